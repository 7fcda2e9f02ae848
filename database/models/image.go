package models

import "gorm.io/gorm"

type Image struct {
	gorm.Model
	Identifier   string `gorm:"uniqueIndex:idx_image_identifier;not null" json:"identifier"`
	OriginalName string `gorm:"not null" json:"original_name"`
	MimeType     string `gorm:"not null" json:"mime_type"`
	FileSize     int64  `gorm:"not null" json:"file_size"`
	StoragePath  string `gorm:"not null" json:"-"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`

	UserID uint `gorm:"index:idx_image_user;not null" json:"-"`
	User   User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	Thumbnails []*Thumbnail `gorm:"foreignKey:ImageID;constraint:OnDelete:CASCADE" json:"-"`
}

// 支持的源图片容器格式
const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
)

// IsSupportedMime 仅 jpg/png 可以作为上传和再编码格式
func IsSupportedMime(mime string) bool {
	return mime == MimeJPEG || mime == MimePNG
}
