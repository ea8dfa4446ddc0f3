// Package binarylink 负责二值图的短时效能力令牌。
// 令牌是不可猜测的随机值，与制品路径无关，存入 TTL 缓存；
// 兑换时重新校验所有者和二值图权限，持有令牌本身不绕过所有权。
package binarylink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anoixa/image-tier/cache"
	"github.com/anoixa/image-tier/database/repo/artifacts"
	"github.com/anoixa/image-tier/internal/access"
	"github.com/anoixa/image-tier/internal/codec"
	"github.com/anoixa/image-tier/storage"
	"github.com/anoixa/image-tier/utils"
)

const (
	// DefaultTimeoutSeconds 未指定超时时的默认值，随后仍会被钳制到下限
	DefaultTimeoutSeconds = 30
	// MinTimeoutSeconds 超时下限
	MinTimeoutSeconds = 300
	// MaxTimeoutSeconds 超时上限
	MaxTimeoutSeconds = 3000

	tokenKeyPrefix = "binary-link:"
)

// ErrLinkNotFound 令牌不存在或已过期
// 授权失败同样映射到此错误，不区分“不存在”和“无权限”
var ErrLinkNotFound = errors.New("binary link not found")

// IssuedLink 签发结果
type IssuedLink struct {
	Token          string `json:"token"`
	TimeoutSeconds int    `json:"timeout"`
}

// BinaryImage 兑换结果
type BinaryImage struct {
	Data     []byte
	MIMEType string
}

// Issuer 二值图链接签发器
type Issuer struct {
	cache         cache.Provider
	artifactsRepo *artifacts.Repository
	controller    *access.Controller
	storage       storage.Provider
}

// NewIssuer 创建签发器
func NewIssuer(
	cache cache.Provider,
	artifactsRepo *artifacts.Repository,
	controller *access.Controller,
	storage storage.Provider,
) *Issuer {
	return &Issuer{
		cache:         cache,
		artifactsRepo: artifactsRepo,
		controller:    controller,
		storage:       storage,
	}
}

// ClampTimeout 将请求超时钳制到 [MinTimeoutSeconds, MaxTimeoutSeconds]
// 越界值静默钳制而不是拒绝
func ClampTimeout(requested int) int {
	if requested < MinTimeoutSeconds {
		return MinTimeoutSeconds
	}
	if requested > MaxTimeoutSeconds {
		return MaxTimeoutSeconds
	}
	return requested
}

// Issue 为指定制品签发二值图能力令牌
// 前置条件：请求者对制品可见且当前等级允许二值图
func (i *Issuer) Issue(ctx context.Context, requesterID uint, storedPath string, requestedTimeout *int) (*IssuedLink, error) {
	artifact, err := i.artifactsRepo.GetByStoredPath(storedPath)
	if err != nil {
		return nil, ErrLinkNotFound
	}

	if err := i.controller.RequireView(ctx, requesterID, artifact); err != nil {
		return nil, ErrLinkNotFound
	}
	if err := i.controller.RequireBinary(ctx, requesterID); err != nil {
		return nil, ErrLinkNotFound
	}

	timeout := DefaultTimeoutSeconds
	if requestedTimeout != nil {
		timeout = *requestedTimeout
	}
	timeout = ClampTimeout(timeout)

	token, err := utils.GenerateRandomToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate binary link token: %w", err)
	}
	if err := i.cache.Set(ctx, tokenKeyPrefix+token, artifact.StoredPath, time.Duration(timeout)*time.Second); err != nil {
		return nil, fmt.Errorf("failed to store binary link token: %w", err)
	}

	return &IssuedLink{Token: token, TimeoutSeconds: timeout}, nil
}

// Redeem 兑换令牌，返回二值图字节
// TTL 窗口内可重复兑换，兑换不吊销令牌
func (i *Issuer) Redeem(ctx context.Context, requesterID uint, token string) (*BinaryImage, error) {
	storedPath, err := i.cache.Get(ctx, tokenKeyPrefix+token)
	if err != nil {
		if cache.IsCacheMiss(err) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to look up binary link token: %w", err)
	}

	artifact, err := i.artifactsRepo.GetByStoredPath(storedPath)
	if err != nil {
		return nil, ErrLinkNotFound
	}

	// 令牌不是所有权的替代品：制品所有者必须仍是请求者
	if artifact.OwnerID != requesterID {
		return nil, ErrLinkNotFound
	}
	if err := i.controller.RequireBinary(ctx, requesterID); err != nil {
		return nil, ErrLinkNotFound
	}

	data, err := storage.ReadAll(ctx, i.storage, artifact.StoredPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact blob: %w", err)
	}

	bilevel, err := codec.ToBilevel(data)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to bilevel: %w", err)
	}

	return &BinaryImage{
		Data:     bilevel,
		MIMEType: artifact.MIMEType(),
	}, nil
}
