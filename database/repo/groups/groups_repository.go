package groups

import (
	"errors"

	"github.com/corvell/imagetier/database/models"
	"gorm.io/gorm"
)

// Repository 分组仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的分组仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetOrCreateSize 按高度解析 Size 记录，不存在则创建
// 高度列上有唯一索引，并发创建时 first writer wins，失败方重查即可
func (r *Repository) GetOrCreateSize(height int) (*models.Size, error) {
	if height <= 0 {
		return nil, errors.New("size height must be positive")
	}

	var size models.Size
	err := r.db.Where("height = ?", height).First(&size).Error
	if err == nil {
		return &size, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	size = models.Size{Height: height}
	if err := r.db.Create(&size).Error; err != nil {
		// 唯一索引冲突，说明被并发创建，重查一次
		var existing models.Size
		if lookupErr := r.db.Where("height = ?", height).First(&existing).Error; lookupErr == nil {
			return &existing, nil
		}
		return nil, err
	}
	return &size, nil
}

// CreateGroup 创建分组并挂接高度集合
// 先建组后挂 Size 集合，两步之间的中间态是可接受的
func (r *Repository) CreateGroup(group *models.Group, heights []int) error {
	sizes := make([]*models.Size, 0, len(heights))
	seen := make(map[int]struct{}, len(heights))
	for _, h := range heights {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}

		size, err := r.GetOrCreateSize(h)
		if err != nil {
			return err
		}
		sizes = append(sizes, size)
	}

	if err := r.db.Create(group).Error; err != nil {
		return err
	}
	return r.db.Model(group).Association("Sizes").Replace(sizes)
}

// GetGroupByID 通过ID获取分组
func (r *Repository) GetGroupByID(id uint) (*models.Group, error) {
	var group models.Group
	err := r.db.Preload("Sizes").First(&group, id).Error
	return &group, err
}

// ListGroups 获取全部分组
func (r *Repository) ListGroups() ([]*models.Group, error) {
	var groups []*models.Group
	err := r.db.Preload("Sizes").Order("id asc").Find(&groups).Error
	return groups, err
}

// GetGroupsByUserID 获取用户所属的全部分组（含高度集合）
// 每次请求现取快照，不做进程级缓存
func (r *Repository) GetGroupsByUserID(userID uint) ([]*models.Group, error) {
	var groups []*models.Group
	err := r.db.Preload("Sizes").
		Joins("JOIN user_groups ON user_groups.group_id = groups.id").
		Where("user_groups.user_id = ?", userID).
		Find(&groups).Error
	return groups, err
}
