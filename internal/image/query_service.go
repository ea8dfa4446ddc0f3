package image

import (
	"context"
	"fmt"

	"github.com/anoixa/image-tier/database/repo/artifacts"
	"github.com/anoixa/image-tier/database/repo/users"
	"github.com/anoixa/image-tier/internal/access"
)

// ResolutionLink 单个分辨率的访问链接
type ResolutionLink struct {
	URL       string `json:"url"`
	BinaryURL string `json:"binary_url,omitempty"`
}

// ArtifactListing 一张原图及其全部可达分辨率
type ArtifactListing struct {
	ID          uint                      `json:"id"`
	Title       string                    `json:"title"`
	Resolutions map[string]ResolutionLink `json:"resolutions"`
}

// QueryService 图片查询服务
type QueryService struct {
	artifactsRepo *artifacts.Repository
	usersRepo     *users.Repository
	baseURL       string
}

// NewQueryService 创建查询服务
func NewQueryService(artifactsRepo *artifacts.Repository, usersRepo *users.Repository, baseURL string) *QueryService {
	return &QueryService{
		artifactsRepo: artifactsRepo,
		usersRepo:     usersRepo,
		baseURL:       baseURL,
	}
}

// ListArtifacts 列出用户的全部原图及衍生分辨率
// binary_url 仅在所有者当前等级允许二值图时出现
func (s *QueryService) ListArtifacts(ctx context.Context, ownerID uint) ([]ArtifactListing, error) {
	owner, err := s.usersRepo.GetByID(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load owner: %w", err)
	}
	withBinary := access.CanViewBinary(owner)

	originals, err := s.artifactsRepo.OriginalsByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list originals: %w", err)
	}

	listings := make([]ArtifactListing, 0, len(originals))
	for _, original := range originals {
		listing := ArtifactListing{
			ID:          original.ID,
			Title:       original.Title,
			Resolutions: map[string]ResolutionLink{},
		}
		listing.Resolutions["original"] = s.link(original.StoredPath, withBinary)

		children, err := s.artifactsRepo.ChildrenOf(original.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list derivatives of %d: %w", original.ID, err)
		}
		for _, child := range children {
			key := fmt.Sprintf("%dpx", child.Height)
			listing.Resolutions[key] = s.link(child.StoredPath, withBinary)
		}

		listings = append(listings, listing)
	}

	return listings, nil
}

// link 构造分辨率访问链接
func (s *QueryService) link(storedPath string, withBinary bool) ResolutionLink {
	link := ResolutionLink{
		URL: fmt.Sprintf("%s/api/images/file/%s", s.baseURL, storedPath),
	}
	if withBinary {
		link.BinaryURL = fmt.Sprintf("%s/api/images/binary-link/%s", s.baseURL, storedPath)
	}
	return link
}
