package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGenerateFromPassword_Success 测试密码哈希生成成功
func TestGenerateFromPassword_Success(t *testing.T) {
	hash, err := GenerateFromPassword("mysecretpassword123")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	assert.Contains(t, hash, "$v=")
	assert.Contains(t, hash, "$m=")
	assert.Contains(t, hash, ",t=")
	assert.Contains(t, hash, ",p=")
}

// TestGenerateFromPassword_DifferentHashes 测试相同密码产生不同哈希
func TestGenerateFromPassword_DifferentHashes(t *testing.T) {
	hash1, err := GenerateFromPassword("samepassword123")
	require.NoError(t, err)

	hash2, err := GenerateFromPassword("samepassword123")
	require.NoError(t, err)

	// 盐值不同
	assert.NotEqual(t, hash1, hash2)
}

// TestComparePasswordAndHash_Success 测试密码验证成功
func TestComparePasswordAndHash_Success(t *testing.T) {
	hash, err := GenerateFromPassword("correctpassword123")
	require.NoError(t, err)

	match, err := ComparePasswordAndHash("correctpassword123", hash)
	require.NoError(t, err)
	assert.True(t, match)
}

// TestComparePasswordAndHash_WrongPassword 测试错误密码
func TestComparePasswordAndHash_WrongPassword(t *testing.T) {
	hash, err := GenerateFromPassword("correctpassword123")
	require.NoError(t, err)

	match, err := ComparePasswordAndHash("wrongpassword123", hash)
	require.NoError(t, err)
	assert.False(t, match)
}

// TestComparePasswordAndHash_MalformedHash 测试损坏的哈希串
func TestComparePasswordAndHash_MalformedHash(t *testing.T) {
	_, err := ComparePasswordAndHash("password", "not-a-valid-hash")
	assert.Error(t, err)
}
