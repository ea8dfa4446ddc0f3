// Package access 实现制品读取的授权判定。
// 判定依赖所有权、制品高度、父子关系和所有者的当前等级，
// 等级在每次请求时实时读取：等级变更立即生效，无需重新发放制品。
package access

import (
	"context"
	"errors"

	"github.com/anoixa/image-tier/database/models"
	"github.com/anoixa/image-tier/database/repo/users"
)

// ErrDenied 授权失败
// 对外统一表现为 not found，不区分“不存在”和“无权限”，避免泄露制品存在性
var ErrDenied = errors.New("access denied")

// CanView 制品可见性判定，自上而下，首条命中即返回
//  1. 非所有者 → 拒绝
//  2. 基础高度（200px）→ 允许，所有者始终可见
//  3. Basic 等级 → 拒绝，基础高度之外一无所有
//  4. 原图 → 取决于等级的原图权限
//  5. 其他衍生图 → 高度必须在等级的额外高度集合内
func CanView(requester *models.User, artifact *models.UploadedImage) bool {
	if requester == nil || artifact == nil {
		return false
	}
	if artifact.OwnerID != requester.ID {
		return false
	}
	if artifact.Height == models.BaseHeight {
		return true
	}
	if requester.Tier == nil {
		return false
	}
	if artifact.IsOriginal() {
		return requester.Tier.AllowsOriginal
	}
	return requester.Tier.HasHeight(artifact.Height)
}

// CanViewBinary 二值图权限，独立于可见性判定，二者都通过才能交付二值图
func CanViewBinary(requester *models.User) bool {
	return requester != nil && requester.Tier != nil && requester.Tier.AllowsBinary
}

// Controller 授权服务，保证每次判定使用实时等级
type Controller struct {
	usersRepo *users.Repository
}

// NewController 创建授权服务
func NewController(usersRepo *users.Repository) *Controller {
	return &Controller{usersRepo: usersRepo}
}

// RequireView 实时加载请求者并判定制品可见性
func (c *Controller) RequireView(ctx context.Context, requesterID uint, artifact *models.UploadedImage) error {
	requester, err := c.usersRepo.GetByID(requesterID)
	if err != nil {
		return ErrDenied
	}
	if !CanView(requester, artifact) {
		return ErrDenied
	}
	return nil
}

// RequireBinary 实时加载请求者并判定二值图权限
func (c *Controller) RequireBinary(ctx context.Context, requesterID uint) error {
	requester, err := c.usersRepo.GetByID(requesterID)
	if err != nil {
		return ErrDenied
	}
	if !CanViewBinary(requester) {
		return ErrDenied
	}
	return nil
}
