package types

import "errors"

// ErrCacheMiss 缓存未命中错误，键不存在或已过期
var ErrCacheMiss = errors.New("cache miss")
