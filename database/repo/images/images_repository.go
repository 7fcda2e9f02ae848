package images

import (
	"github.com/corvell/imagetier/database/models"
	"gorm.io/gorm"
)

// Repository 图片仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的图片仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SaveImage 保存图片
func (r *Repository) SaveImage(image *models.Image) error {
	return r.db.Create(image).Error
}

// GetImageByIdentifier 通过标识符获取图片
func (r *Repository) GetImageByIdentifier(identifier string) (*models.Image, error) {
	var image models.Image
	err := r.db.Where("identifier = ?", identifier).First(&image).Error
	return &image, err
}

// GetImageByID 通过ID获取图片
func (r *Repository) GetImageByID(id uint) (*models.Image, error) {
	var image models.Image
	err := r.db.First(&image, id).Error
	return &image, err
}

// ListImagesByUser 获取用户图片列表
func (r *Repository) ListImagesByUser(userID uint, page, pageSize int) ([]*models.Image, int64, error) {
	var images []*models.Image
	var total int64

	db := r.db.Model(&models.Image{}).Where("user_id = ?", userID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := db.Order("created_at asc").Offset(offset).Limit(pageSize).Find(&images).Error
	return images, total, err
}
