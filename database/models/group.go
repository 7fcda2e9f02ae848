package models

import "gorm.io/gorm"

// Group 订阅分组，承载该分组授予的能力集
// 能力直接建模在分组记录上，而不是挂在身份框架的角色之上
type Group struct {
	gorm.Model
	Name string `gorm:"uniqueIndex;not null" json:"name"`

	// 允许的缩略图高度集合
	Sizes []*Size `gorm:"many2many:group_sizes;" json:"sizes"`

	AllowOriginalImage bool `gorm:"default:false;not null" json:"allow_original_image"`
	AllowExpiringLink  bool `gorm:"default:false;not null" json:"allow_expiring_link"`

	Users []*User `gorm:"many2many:user_groups;" json:"-"`
}
