package image

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/anoixa/image-tier/database/models"
	"github.com/anoixa/image-tier/database/repo/artifacts"
	"github.com/anoixa/image-tier/internal/codec"
	"github.com/anoixa/image-tier/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// maxRenderConcurrency 单次同步批次内并行渲染的 (原图, 高度) 对数上限
const maxRenderConcurrency = 4

// PairFailure 单个 (原图, 高度) 对的渲染失败
type PairFailure struct {
	ImageID uint
	Height  int
	Err     error
}

func (f PairFailure) Error() string {
	return fmt.Sprintf("image %d height %d: %v", f.ImageID, f.Height, f.Err)
}

// SyncReport 一次同步的结果
type SyncReport struct {
	Created  int
	Existing int
	Failures []PairFailure
}

// Synchronizer 缩略图同步器
// 对给定原图集合和所需高度集合，保证每个 (原图, 高度) 对都有对应衍生图。
// 幂等：已存在的对不重复渲染；并发重复创建由存储层唯一约束裁决。
// 三个触发点（上传、等级变更、等级扩展）都收敛到同一个 Ensure 调用。
type Synchronizer struct {
	artifactsRepo *artifacts.Repository
	storage       storage.Provider
}

// NewSynchronizer 创建同步器
func NewSynchronizer(artifactsRepo *artifacts.Repository, storage storage.Provider) *Synchronizer {
	return &Synchronizer{
		artifactsRepo: artifactsRepo,
		storage:       storage,
	}
}

// Ensure 确保每个原图在每个所需高度都有衍生图
// 单对失败只记录，不中断批次其余对的处理
func (s *Synchronizer) Ensure(ctx context.Context, originals []*models.UploadedImage, requiredHeights []int) *SyncReport {
	report := &SyncReport{}

	heights := dedupeHeights(requiredHeights)
	if len(originals) == 0 || len(heights) == 0 {
		return report
	}

	parentIDs := make([]uint, 0, len(originals))
	for _, img := range originals {
		if img.IsOriginal() {
			parentIDs = append(parentIDs, img.ID)
		}
	}

	existing, err := s.artifactsRepo.ExistingHeights(parentIDs)
	if err != nil {
		// 预查询失败时退化为逐对检查，由唯一约束兜底
		log.Printf("[Synchronizer] Failed to query existing heights: %v", err)
		existing = make(map[uint]map[int]bool)
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(maxRenderConcurrency)

	for _, img := range originals {
		if !img.IsOriginal() {
			continue
		}
		for _, height := range heights {
			if existing[img.ID][height] {
				mu.Lock()
				report.Existing++
				mu.Unlock()
				continue
			}

			img, height := img, height
			g.Go(func() error {
				created, err := s.renderPair(ctx, img, height)

				mu.Lock()
				defer mu.Unlock()
				switch {
				case err != nil:
					report.Failures = append(report.Failures, PairFailure{ImageID: img.ID, Height: height, Err: err})
				case created:
					report.Created++
				default:
					report.Existing++
				}
				// 单对失败不向 errgroup 上抛，保持批次继续
				return nil
			})
		}
	}

	_ = g.Wait()

	for _, f := range report.Failures {
		log.Printf("[Synchronizer] Render failed: %v", f)
	}

	return report
}

// renderPair 渲染一个 (原图, 高度) 对
// 返回 created=false 表示另一并发触发者先写入了同一衍生图
func (s *Synchronizer) renderPair(ctx context.Context, original *models.UploadedImage, height int) (bool, error) {
	data, err := storage.ReadAll(ctx, s.storage, original.StoredPath)
	if err != nil {
		return false, fmt.Errorf("failed to read original blob: %w", err)
	}

	resized, err := codec.Resize(data, height)
	if err != nil {
		return false, fmt.Errorf("failed to resize: %w", err)
	}

	width, _, err := codec.Dimensions(resized)
	if err != nil {
		return false, fmt.Errorf("failed to read resized dimensions: %w", err)
	}

	// 所有者命名空间下的全新不可猜测路径
	path := NewBlobPath(original.Owner.UUID, original.Extension())

	if err := s.storage.SaveWithContext(ctx, path, bytes.NewReader(resized)); err != nil {
		return false, fmt.Errorf("failed to store derivative blob: %w", err)
	}

	derivative := &models.UploadedImage{
		OwnerID:    original.OwnerID,
		Title:      original.Title,
		StoredPath: path,
		Format:     original.Format,
		Width:      width,
		Height:     height,
		ParentID:   &original.ID,
	}

	created, err := s.artifactsRepo.CreateDerivative(derivative)
	if err != nil {
		// 记录创建失败，孤儿 blob 尽力清理
		_ = s.storage.DeleteWithContext(ctx, path)
		return false, fmt.Errorf("failed to create derivative record: %w", err)
	}
	if !created {
		// 并发触发者赢得了唯一约束，本次渲染的 blob 作废
		_ = s.storage.DeleteWithContext(ctx, path)
	}
	return created, nil
}

// NewBlobPath 生成所有者命名空间下的随机存储路径
func NewBlobPath(ownerUUID, ext string) string {
	name := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s/%s%s", ownerUUID, name, ext)
}

// dedupeHeights 去重并过滤非法高度
func dedupeHeights(heights []int) []int {
	seen := make(map[int]bool, len(heights))
	out := make([]int, 0, len(heights))
	for _, h := range heights {
		if h <= 0 || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}
