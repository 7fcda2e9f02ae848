package cache

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"
)

// Memory 基于 ristretto 的进程内缓存实现
type Memory struct {
	client *ristretto.Cache
}

// MemoryConfig 内存缓存配置
type MemoryConfig struct {
	MaxCostBytes int64
}

// NewMemory 创建新的内存缓存提供者
func NewMemory(cfg MemoryConfig) (*Memory, error) {
	maxCost := cfg.MaxCostBytes
	if maxCost <= 0 {
		maxCost = 64 << 20
	}

	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e6,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &Memory{client: client}, nil
}

// Set 设置缓存项
func (m *Memory) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	set := m.client.SetWithTTL(key, value, int64(len(value)), expiration)
	if set {
		// 等待值被实际设置
		m.client.Wait()
	}
	return nil
}

// Get 获取缓存项
func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	value, found := m.client.Get(key)
	if !found {
		return nil, ErrCacheMiss
	}

	data, ok := value.([]byte)
	if !ok {
		return nil, ErrCacheMiss
	}
	return data, nil
}

// Delete 删除缓存项
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.client.Del(key)
	return nil
}

// Close 关闭缓存
func (m *Memory) Close() error {
	m.client.Close()
	return nil
}

// Name 返回缓存提供者名称
func (m *Memory) Name() string {
	return "memory"
}
