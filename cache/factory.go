package cache

import (
	"fmt"
	"log"

	"github.com/anoixa/image-tier/cache/memory"
	"github.com/anoixa/image-tier/cache/redis"
	"github.com/anoixa/image-tier/config"
)

// NewProvider 根据配置创建缓存提供者
func NewProvider(cfg *config.Config) (Provider, error) {
	cacheType := cfg.CacheType
	if cacheType == "" {
		cacheType = "memory"
	}

	switch cacheType {
	case "memory":
		provider, err := memory.NewMemory(memory.DefaultConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to create memory cache: %w", err)
		}
		log.Println("Successfully initialized 'memory' cache provider")
		return provider, nil
	case "redis":
		provider, err := redis.NewRedis(redis.Config{
			Addr:     cfg.CacheRedisAddr,
			Password: cfg.CacheRedisPassword,
			DB:       cfg.CacheRedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis cache: %w", err)
		}
		log.Println("Successfully initialized 'redis' cache provider")
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheType)
	}
}
