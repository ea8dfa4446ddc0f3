package memory

import (
	"context"
	"time"

	"github.com/anoixa/image-tier/cache/types"
	"github.com/dgraph-io/ristretto"
)

// Memory 内存缓存实现
type Memory struct {
	client *ristretto.Cache
}

// Config 内存缓存配置
type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
}

// DefaultConfig 默认配置，按十万级令牌估算
func DefaultConfig() Config {
	return Config{
		NumCounters: 1e6,
		MaxCost:     1 << 26, // 64 MB
		BufferItems: 64,
	}
}

// NewMemory 创建新的内存缓存提供者
func NewMemory(config Config) (*Memory, error) {
	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: config.NumCounters,
		MaxCost:     config.MaxCost,
		BufferItems: config.BufferItems,
	})
	if err != nil {
		return nil, err
	}

	return &Memory{
		client: client,
	}, nil
}

// Set 设置缓存项
func (m *Memory) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	set := m.client.SetWithTTL(key, value, int64(len(value)), expiration)
	if set {
		// 等待值被实际写入，令牌签发后必须立即可兑换
		m.client.Wait()
	}
	return nil
}

// Get 获取缓存项
func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	value, found := m.client.Get(key)
	if !found {
		return "", types.ErrCacheMiss
	}

	s, ok := value.(string)
	if !ok {
		return "", types.ErrCacheMiss
	}
	return s, nil
}

// Delete 删除缓存项
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.client.Del(key)
	return nil
}

// Close 关闭缓存连接
func (m *Memory) Close() error {
	m.client.Close()
	return nil
}

// Name 返回缓存提供者名称
func (m *Memory) Name() string {
	return "memory"
}
