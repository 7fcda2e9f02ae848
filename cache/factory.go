package cache

import (
	"fmt"
	"log"

	"github.com/corvell/imagetier/config"
)

// NewProvider 根据配置创建缓存提供者
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.CacheType {
	case "memory", "":
		provider, err := NewMemory(MemoryConfig{
			MaxCostBytes: cfg.CacheMaxSizeMB << 20,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize memory cache: %w", err)
		}
		log.Println("Successfully initialized 'memory' cache provider")
		return provider, nil
	case "redis":
		provider, err := NewRedis(RedisConfig{
			Addr:     cfg.CacheRedisAddr,
			Password: cfg.CacheRedisPassword,
			DB:       cfg.CacheRedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis cache: %w", err)
		}
		log.Println("Successfully initialized 'redis' cache provider")
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.CacheType)
	}
}
