package models

import "gorm.io/gorm"

// Thumbnail 派生缩略图，逻辑上按 (ImageID, Height) 唯一
// 并发首次请求可能产生重复行，读取侧总是取最早的一条作为幸存者
type Thumbnail struct {
	gorm.Model
	ImageID uint  `gorm:"index:idx_thumb_image_height,priority:1;not null" json:"image_id"`
	Image   Image `gorm:"foreignKey:ImageID;constraint:OnDelete:CASCADE" json:"-"`

	// Height 请求的目标高度，Width 按比例推导
	Height int `gorm:"index:idx_thumb_image_height,priority:2;not null" json:"height"`
	Width  int `json:"width"`

	Identifier  string `gorm:"not null" json:"identifier"`
	StoragePath string `gorm:"not null" json:"-"`
	MimeType    string `gorm:"not null" json:"mime_type"`
	FileSize    int64  `gorm:"not null" json:"file_size"`
}
