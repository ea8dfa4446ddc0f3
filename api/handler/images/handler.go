package images

import (
	"github.com/anoixa/image-tier/database/repo/artifacts"
	"github.com/anoixa/image-tier/internal/access"
	"github.com/anoixa/image-tier/internal/binarylink"
	imageSvc "github.com/anoixa/image-tier/internal/image"
	"github.com/anoixa/image-tier/storage"
)

// Handler 图片接口处理器
type Handler struct {
	uploadService *imageSvc.UploadService
	queryService  *imageSvc.QueryService
	deleteService *imageSvc.DeleteService
	artifactsRepo *artifacts.Repository
	controller    *access.Controller
	issuer        *binarylink.Issuer
	storage       storage.Provider
	maxUploadSize int64
}

// NewHandler 创建处理器
func NewHandler(
	uploadService *imageSvc.UploadService,
	queryService *imageSvc.QueryService,
	deleteService *imageSvc.DeleteService,
	artifactsRepo *artifacts.Repository,
	controller *access.Controller,
	issuer *binarylink.Issuer,
	storage storage.Provider,
	maxUploadSizeMB int,
) *Handler {
	return &Handler{
		uploadService: uploadService,
		queryService:  queryService,
		deleteService: deleteService,
		artifactsRepo: artifactsRepo,
		controller:    controller,
		issuer:        issuer,
		storage:       storage,
		maxUploadSize: int64(maxUploadSizeMB) << 20,
	}
}
