package images

import (
	"github.com/corvell/imagetier/database/models"
	"gorm.io/gorm"
)

// ThumbnailRepository 缩略图仓库
type ThumbnailRepository struct {
	db *gorm.DB
}

// NewThumbnailRepository 创建新的缩略图仓库
func NewThumbnailRepository(db *gorm.DB) *ThumbnailRepository {
	return &ThumbnailRepository{db: db}
}

// SaveThumbnail 保存缩略图记录
func (r *ThumbnailRepository) SaveThumbnail(thumbnail *models.Thumbnail) error {
	return r.db.Create(thumbnail).Error
}

// GetByImageAndHeight 获取 (image, height) 的缩略图记录
// 并发首次请求可能写入重复行，这里总是取主键最小的一条作为确定性幸存者
func (r *ThumbnailRepository) GetByImageAndHeight(imageID uint, height int) (*models.Thumbnail, error) {
	var thumbnail models.Thumbnail
	err := r.db.Where("image_id = ? AND height = ?", imageID, height).
		Order("id asc").
		First(&thumbnail).Error
	return &thumbnail, err
}

// CountByImageAndHeight 统计 (image, height) 的缩略图行数
func (r *ThumbnailRepository) CountByImageAndHeight(imageID uint, height int) (int64, error) {
	var count int64
	err := r.db.Model(&models.Thumbnail{}).
		Where("image_id = ? AND height = ?", imageID, height).
		Count(&count).Error
	return count, err
}
