package memory

import (
	"context"
	"testing"
	"time"

	"github.com/anoixa/image-tier/cache/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemory(t *testing.T) *Memory {
	m, err := NewMemory(DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

// TestMemory_SetGet 测试写入后立即可读
func TestMemory_SetGet(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "token-1", "alice/photo.png", time.Minute))

	value, err := m.Get(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, "alice/photo.png", value)
}

// TestMemory_Miss 测试不存在的键返回缓存未命中
func TestMemory_Miss(t *testing.T) {
	m := newTestMemory(t)

	_, err := m.Get(context.Background(), "no-such-key")
	assert.ErrorIs(t, err, types.ErrCacheMiss)
}

// TestMemory_TTLExpiry 测试过期后键不可读
func TestMemory_TTLExpiry(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "short-lived", "value", 20*time.Millisecond))
	time.Sleep(100 * time.Millisecond)

	_, err := m.Get(ctx, "short-lived")
	assert.ErrorIs(t, err, types.ErrCacheMiss)
}

// TestMemory_Delete 测试删除后键不可读
func TestMemory_Delete(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "token-2", "value", time.Minute))
	require.NoError(t, m.Delete(ctx, "token-2"))

	_, err := m.Get(ctx, "token-2")
	assert.ErrorIs(t, err, types.ErrCacheMiss)
}
