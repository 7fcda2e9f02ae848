package models

import "time"

// TemporaryLink 临时公开访问链接
// 记录创建后不再变更；过期后记录保留但永久失效
type TemporaryLink struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ImageID uint  `gorm:"index;not null" json:"image_id"`
	Image   Image `gorm:"foreignKey:ImageID;constraint:OnDelete:CASCADE" json:"-"`

	// ExpireAt 绝对过期时间（epoch 秒），不是时长
	ExpireAt float64 `gorm:"not null" json:"expire_time"`
}

// Expired 判断链接在 now 时刻是否已失效
func (l *TemporaryLink) Expired(now time.Time) bool {
	if l.ExpireAt == 0 {
		return true
	}
	return float64(now.Unix()) >= l.ExpireAt
}
