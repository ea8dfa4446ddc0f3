package cache

import (
	"context"
	"errors"
	"time"

	"github.com/anoixa/image-tier/cache/types"
)

// ErrCacheMiss 缓存未命中错误
var ErrCacheMiss = types.ErrCacheMiss

// Provider 缓存提供者接口 - 依赖倒置的核心抽象
// 令牌 TTL 存储的唯一后端入口，过期由实现异步处理，无回调
type Provider interface {
	// Set 设置缓存项及其过期时间
	Set(ctx context.Context, key string, value string, expiration time.Duration) error

	// Get 获取缓存项，未命中返回 ErrCacheMiss
	Get(ctx context.Context, key string) (string, error)

	// Delete 删除缓存项
	Delete(ctx context.Context, key string) error

	// Close 关闭缓存连接
	Close() error

	// Name 返回缓存提供者名称
	Name() string
}

// IsCacheMiss 判断是否为缓存未命中错误
func IsCacheMiss(err error) bool {
	return errors.Is(err, types.ErrCacheMiss)
}
