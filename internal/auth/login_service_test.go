package auth

import (
	"testing"
	"time"

	"github.com/anoixa/image-tier/database/models"
	"github.com/anoixa/image-tier/database/repo/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupLoginService 创建登录服务测试环境
func setupLoginService(t *testing.T) *LoginService {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AvailableHeight{}, &models.Tier{}, &models.User{}))

	jwtService, err := NewJWTService("test-secret", time.Hour)
	require.NoError(t, err)

	return NewLoginService(users.NewRepository(db), jwtService)
}

// TestLogin_Success 测试正确凭证登录成功
func TestLogin_Success(t *testing.T) {
	svc := setupLoginService(t)

	user, err := svc.CreateUser("alice", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, user.UUID)

	result, err := svc.Login("alice", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, user.ID, result.UserID)
}

// TestLogin_WrongPassword 测试错误密码被拒绝
func TestLogin_WrongPassword(t *testing.T) {
	svc := setupLoginService(t)

	_, err := svc.CreateUser("alice", "correct-horse")
	require.NoError(t, err)

	_, err = svc.Login("alice", "battery-staple")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

// TestLogin_UnknownUser 测试不存在的用户同样返回凭证错误
func TestLogin_UnknownUser(t *testing.T) {
	svc := setupLoginService(t)

	_, err := svc.Login("nobody", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

// TestCreateUser_HashesPassword 测试密码以 Argon2id 哈希存储
func TestCreateUser_HashesPassword(t *testing.T) {
	svc := setupLoginService(t)

	user, err := svc.CreateUser("alice", "plaintext")
	require.NoError(t, err)
	assert.NotEqual(t, "plaintext", user.Password)
	assert.Contains(t, user.Password, "$argon2id$")
}
