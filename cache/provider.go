package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss 缓存未命中错误
var ErrCacheMiss = errors.New("cache miss")

// Provider 缓存提供者接口 - 依赖倒置的核心抽象
// 值统一为字节串，用于热图片/缩略图内容缓存
type Provider interface {
	// Set 设置缓存项
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error

	// Get 获取缓存项，未命中返回 ErrCacheMiss
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete 删除缓存项
	Delete(ctx context.Context, key string) error

	// Close 关闭缓存连接
	Close() error

	// Name 返回缓存提供者名称
	Name() string
}

// IsCacheMiss 判断是否为缓存未命中错误
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

// ImageBytesKey 原图内容缓存键
func ImageBytesKey(identifier string) string {
	return "image:bytes:" + identifier
}

// ThumbnailBytesKey 缩略图内容缓存键
func ThumbnailBytesKey(identifier string) string {
	return "thumbnail:bytes:" + identifier
}
