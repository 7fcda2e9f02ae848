package models

import "gorm.io/gorm"

// Size 白名单缩略图高度，按值去重
type Size struct {
	gorm.Model
	Height int `gorm:"uniqueIndex:idx_size_height;not null" json:"height"`
}
