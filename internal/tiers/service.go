// Package tiers 负责等级配置变更及其触发的缩略图补齐。
// 变更建模为显式领域事件而不是 ORM 钩子：等级扩展产生 TierHeightsAdded，
// 由同一个处理函数驱动同步器，使触发逻辑可以作为事件加当前状态的纯函数测试。
package tiers

import (
	"context"
	"fmt"
	"log"

	"github.com/anoixa/image-tier/database/models"
	"github.com/anoixa/image-tier/database/repo/artifacts"
	"github.com/anoixa/image-tier/database/repo/heights"
	"github.com/anoixa/image-tier/database/repo/tiers"
	"github.com/anoixa/image-tier/database/repo/users"
	imageSvc "github.com/anoixa/image-tier/internal/image"
)

// TierHeightsAdded 高度加入等级的领域事件
// 只有新增会产生事件：移除是空操作，已渲染的缩略图永不随等级收缩删除
type TierHeightsAdded struct {
	TierID     uint
	NewHeights []int
}

// Service 等级服务
type Service struct {
	tiersRepo     *tiers.Repository
	heightsRepo   *heights.Repository
	usersRepo     *users.Repository
	artifactsRepo *artifacts.Repository
	synchronizer  *imageSvc.Synchronizer
}

// NewService 创建等级服务
func NewService(
	tiersRepo *tiers.Repository,
	heightsRepo *heights.Repository,
	usersRepo *users.Repository,
	artifactsRepo *artifacts.Repository,
	synchronizer *imageSvc.Synchronizer,
) *Service {
	return &Service{
		tiersRepo:     tiersRepo,
		heightsRepo:   heightsRepo,
		usersRepo:     usersRepo,
		artifactsRepo: artifactsRepo,
		synchronizer:  synchronizer,
	}
}

// ReassignTier 变更用户等级，newTierID 为 nil 表示回落 Basic
// 读取当前等级作为旧值，只补齐新等级相对旧等级新增的高度；
// 失去的高度不删除制品，用户回到旧等级时无需重新渲染
func (s *Service) ReassignTier(ctx context.Context, userID uint, newTierID *uint) (*imageSvc.SyncReport, error) {
	user, err := s.usersRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	oldSizes := user.ExtraImageSizes()

	var newSizes []int
	if newTierID != nil {
		newTier, err := s.tiersRepo.GetByID(*newTierID)
		if err != nil {
			return nil, fmt.Errorf("failed to load new tier: %w", err)
		}
		newSizes = newTier.ExtraImageSizes()
	}

	if err := s.usersRepo.UpdateTier(userID, newTierID); err != nil {
		return nil, fmt.Errorf("failed to update user tier: %w", err)
	}

	gained := difference(newSizes, oldSizes)
	if len(gained) == 0 {
		return &imageSvc.SyncReport{}, nil
	}

	originals, err := s.artifactsRepo.OriginalsByOwner(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list originals: %w", err)
	}

	return s.synchronizer.Ensure(ctx, originals, gained), nil
}

// ExtendTier 向等级追加目录高度并分发扩展事件
func (s *Service) ExtendTier(ctx context.Context, tierID uint, heightIDs []uint) (*imageSvc.SyncReport, error) {
	tier, err := s.tiersRepo.GetByID(tierID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tier: %w", err)
	}

	hs, err := s.heightsRepo.GetByIDs(heightIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load heights: %w", err)
	}
	if len(hs) != len(heightIDs) {
		return nil, fmt.Errorf("unknown height id in %v", heightIDs)
	}

	added, err := s.tiersRepo.AddHeights(tier, hs)
	if err != nil {
		return nil, fmt.Errorf("failed to add heights to tier: %w", err)
	}
	if len(added) == 0 {
		return &imageSvc.SyncReport{}, nil
	}

	return s.HandleTierHeightsAdded(ctx, TierHeightsAdded{TierID: tierID, NewHeights: added})
}

// ShrinkTier 从等级移除高度，不触发任何渲染或删除
func (s *Service) ShrinkTier(ctx context.Context, tierID uint, heightID uint) error {
	tier, err := s.tiersRepo.GetByID(tierID)
	if err != nil {
		return fmt.Errorf("failed to load tier: %w", err)
	}
	h, err := s.heightsRepo.GetByID(heightID)
	if err != nil {
		return fmt.Errorf("failed to load height: %w", err)
	}
	return s.tiersRepo.RemoveHeight(tier, h)
}

// HandleTierHeightsAdded 处理等级扩展事件
// 为当前处于该等级的所有用户的全部原图补齐新增高度
func (s *Service) HandleTierHeightsAdded(ctx context.Context, event TierHeightsAdded) (*imageSvc.SyncReport, error) {
	userIDs, err := s.tiersRepo.UsersWithTier(event.TierID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users with tier: %w", err)
	}
	if len(userIDs) == 0 {
		return &imageSvc.SyncReport{}, nil
	}

	originals, err := s.artifactsRepo.OriginalsByOwners(userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list originals: %w", err)
	}

	report := s.synchronizer.Ensure(ctx, originals, event.NewHeights)
	if len(report.Failures) > 0 {
		log.Printf("[Tiers] Extension of tier %d finished with %d failures", event.TierID, len(report.Failures))
	}
	return report, nil
}

// CreateTier 创建等级
func (s *Service) CreateTier(name string, allowsOriginal, allowsBinary bool) (*models.Tier, error) {
	tier := &models.Tier{
		Name:           name,
		AllowsOriginal: allowsOriginal,
		AllowsBinary:   allowsBinary,
	}
	if err := s.tiersRepo.Create(tier); err != nil {
		return nil, err
	}
	return tier, nil
}

// difference a 中不在 b 的高度
func difference(a, b []int) []int {
	inB := make(map[int]bool, len(b))
	for _, h := range b {
		inB[h] = true
	}
	var out []int
	for _, h := range a {
		if !inB[h] {
			out = append(out, h)
		}
	}
	return out
}
