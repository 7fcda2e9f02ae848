package links

import (
	"github.com/corvell/imagetier/database/models"
	"gorm.io/gorm"
)

// Repository 临时链接仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的临时链接仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SaveLink 保存临时链接
func (r *Repository) SaveLink(link *models.TemporaryLink) error {
	return r.db.Create(link).Error
}

// GetLinkByID 通过ID获取临时链接
// 过期的记录同样会被返回，是否失效由调用方判断
func (r *Repository) GetLinkByID(id string) (*models.TemporaryLink, error) {
	var link models.TemporaryLink
	err := r.db.Where("id = ?", id).First(&link).Error
	return &link, err
}
