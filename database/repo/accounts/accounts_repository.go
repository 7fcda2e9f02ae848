package accounts

import (
	"errors"
	"log"

	"github.com/corvell/imagetier/database/models"
	cryptoutils "github.com/corvell/imagetier/utils/crypto"
	"gorm.io/gorm"
)

// Repository 用户仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的用户仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser 创建用户
func (r *Repository) CreateUser(user *models.User) error {
	return r.db.Create(user).Error
}

// GetUserByUsername 通过用户名获取用户
func (r *Repository) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Preload("Groups").Where("username = ?", username).First(&user).Error
	return &user, err
}

// GetUserByID 通过ID获取用户
func (r *Repository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.Preload("Groups").First(&user, id).Error
	return &user, err
}

// AssignGroups 将用户加入给定名称的分组
func (r *Repository) AssignGroups(user *models.User, groupNames []string) error {
	if len(groupNames) == 0 {
		return nil
	}

	var groups []*models.Group
	if err := r.db.Where("name IN ?", groupNames).Find(&groups).Error; err != nil {
		return err
	}
	if len(groups) != len(groupNames) {
		return errors.New("one or more groups do not exist")
	}

	return r.db.Model(user).Association("Groups").Append(groups)
}

// CreateDefaultAdminUser 创建默认管理员用户（已存在时跳过）
func (r *Repository) CreateDefaultAdminUser(username, password string) {
	if username == "" || password == "" {
		log.Println("[Accounts] Default admin not configured, skipping bootstrap")
		return
	}

	var count int64
	if err := r.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		log.Printf("[Accounts] Failed to check default admin: %v", err)
		return
	}
	if count > 0 {
		return
	}

	hashed, err := cryptoutils.GenerateFromPassword(password)
	if err != nil {
		log.Printf("[Accounts] Failed to hash default admin password: %v", err)
		return
	}

	admin := &models.User{
		Username: username,
		Password: hashed,
		IsAdmin:  true,
	}
	if err := r.db.Create(admin).Error; err != nil {
		log.Printf("[Accounts] Failed to create default admin: %v", err)
		return
	}
	log.Printf("[Accounts] Created default admin user '%s'", username)
}
