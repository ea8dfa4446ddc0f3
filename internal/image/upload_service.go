package image

import (
	"bytes"
	"context"
	"fmt"

	"github.com/anoixa/image-tier/database/models"
	"github.com/anoixa/image-tier/database/repo/artifacts"
	"github.com/anoixa/image-tier/database/repo/users"
	"github.com/anoixa/image-tier/internal/codec"
	"github.com/anoixa/image-tier/storage"
)

// UploadResult 上传结果
type UploadResult struct {
	Original *models.UploadedImage
	Report   *SyncReport
}

// UploadService 图片上传协调器
// 存储原图后立即为基础高度和所有者等级的额外高度补齐缩略图
type UploadService struct {
	artifactsRepo *artifacts.Repository
	usersRepo     *users.Repository
	storage       storage.Provider
	synchronizer  *Synchronizer
}

// NewUploadService 创建上传服务
func NewUploadService(
	artifactsRepo *artifacts.Repository,
	usersRepo *users.Repository,
	storage storage.Provider,
	synchronizer *Synchronizer,
) *UploadService {
	return &UploadService{
		artifactsRepo: artifactsRepo,
		usersRepo:     usersRepo,
		storage:       storage,
		synchronizer:  synchronizer,
	}
}

// Upload 处理单文件上传
// 仅接受 JPEG/PNG，其余格式返回 codec.ErrUnsupportedFormat
func (s *UploadService) Upload(ctx context.Context, ownerID uint, data []byte, filename string) (*UploadResult, error) {
	format := codec.SniffFormat(data)
	if format == codec.FormatUnknown {
		return nil, codec.ErrUnsupportedFormat
	}

	width, height, err := codec.Dimensions(data)
	if err != nil {
		// 魔数合法但像素数据损坏
		return nil, fmt.Errorf("%w: %v", codec.ErrUnsupportedFormat, err)
	}

	owner, err := s.usersRepo.GetByID(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load owner: %w", err)
	}

	original := &models.UploadedImage{
		OwnerID: owner.ID,
		Owner:   *owner,
		Title:   filename,
		Format:  string(format),
		Width:   width,
		Height:  height,
	}
	original.StoredPath = NewBlobPath(owner.UUID, original.Extension())

	if err := s.storage.SaveWithContext(ctx, original.StoredPath, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to store original blob: %w", err)
	}

	if err := s.artifactsRepo.CreateOriginal(original); err != nil {
		// 记录失败时清理孤儿 blob
		_ = s.storage.DeleteWithContext(ctx, original.StoredPath)
		return nil, fmt.Errorf("failed to create original record: %w", err)
	}

	// 基础高度始终补齐，额外高度跟随所有者当前等级（Basic 为空集）
	required := append([]int{models.BaseHeight}, owner.ExtraImageSizes()...)
	report := s.synchronizer.Ensure(ctx, []*models.UploadedImage{original}, required)

	return &UploadResult{Original: original, Report: report}, nil
}
