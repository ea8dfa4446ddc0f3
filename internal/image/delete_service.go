package image

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/anoixa/image-tier/database/repo/artifacts"
	"github.com/anoixa/image-tier/storage"
)

// ErrNotOwner 请求者不是制品所有者
var ErrNotOwner = errors.New("requester does not own this artifact")

// DeleteService 图片删除服务
// 删除原图级联删除全部衍生记录，blob 清理尽力而为，从不阻塞记录删除
type DeleteService struct {
	artifactsRepo *artifacts.Repository
	storage       storage.Provider
}

// NewDeleteService 创建删除服务
func NewDeleteService(artifactsRepo *artifacts.Repository, storage storage.Provider) *DeleteService {
	return &DeleteService{
		artifactsRepo: artifactsRepo,
		storage:       storage,
	}
}

// Delete 删除指定制品及其衍生记录
func (s *DeleteService) Delete(ctx context.Context, requesterID uint, artifactID uint) error {
	img, err := s.artifactsRepo.GetByID(artifactID)
	if err != nil {
		return err
	}
	if img.OwnerID != requesterID {
		return ErrNotOwner
	}

	paths, err := s.artifactsRepo.DeleteWithChildren(artifactID)
	if err != nil {
		return fmt.Errorf("failed to delete artifact records: %w", err)
	}

	s.cleanupBlobs(ctx, paths)
	return nil
}

// DeleteAllForOwner 删除用户的全部制品（用户删除时级联调用）
func (s *DeleteService) DeleteAllForOwner(ctx context.Context, ownerID uint) error {
	paths, err := s.artifactsRepo.DeleteByOwner(ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete owner artifacts: %w", err)
	}

	s.cleanupBlobs(ctx, paths)
	return nil
}

// cleanupBlobs blob 删除失败只记录，不重试
func (s *DeleteService) cleanupBlobs(ctx context.Context, paths []string) {
	for _, path := range paths {
		if err := s.storage.DeleteWithContext(ctx, path); err != nil {
			log.Printf("[Delete] Failed to remove blob %s: %v", path, err)
		}
	}
}
