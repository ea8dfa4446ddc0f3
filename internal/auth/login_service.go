package auth

import (
	"errors"
	"log"
	"time"

	"github.com/anoixa/image-tier/database/models"
	"github.com/anoixa/image-tier/database/repo/users"
	"github.com/anoixa/image-tier/utils"
	"github.com/anoixa/image-tier/utils/crypto"
	"gorm.io/gorm"
)

// ErrInvalidCredentials 用户名或密码错误
var ErrInvalidCredentials = errors.New("invalid username or password")

// LoginResult 登录结果
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	UserID      uint
}

// LoginService 登录服务
type LoginService struct {
	usersRepo  *users.Repository
	jwtService *JWTService
}

// NewLoginService 创建登录服务
func NewLoginService(usersRepo *users.Repository, jwtService *JWTService) *LoginService {
	return &LoginService{
		usersRepo:  usersRepo,
		jwtService: jwtService,
	}
}

// Login 校验凭证并签发访问令牌
func (s *LoginService) Login(username, password string) (*LoginResult, error) {
	user, err := s.usersRepo.GetByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	match, err := crypto.ComparePasswordAndHash(password, user.Password)
	if err != nil || !match {
		log.Printf("[Auth] Failed login attempt for user %s", utils.SanitizeLogUsername(username))
		return nil, ErrInvalidCredentials
	}

	token, expiry, err := s.jwtService.GenerateAccessToken(user.Username, user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken: token,
		ExpiresAt:   expiry,
		UserID:      user.ID,
	}, nil
}

// CreateUser 创建用户（管理端），密码以 Argon2id 哈希存储
func (s *LoginService) CreateUser(username, password string) (*models.User, error) {
	hash, err := crypto.GenerateFromPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: username,
		Password: hash,
	}
	if err := s.usersRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}
