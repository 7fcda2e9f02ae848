package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Username string `gorm:"uniqueIndex;not null"`
	Password string `json:"-"`
	IsAdmin  bool   `gorm:"default:false;not null"`

	Groups []*Group `gorm:"many2many:user_groups;"`
}
