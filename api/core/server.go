package core

import (
	"net/http"
	"time"

	"github.com/anoixa/image-tier/api/middleware"
	"github.com/anoixa/image-tier/cache"
	"github.com/anoixa/image-tier/config"
	"github.com/anoixa/image-tier/database/repo/artifacts"
	"github.com/anoixa/image-tier/database/repo/heights"
	tiersRepo "github.com/anoixa/image-tier/database/repo/tiers"
	"github.com/anoixa/image-tier/database/repo/users"
	"github.com/anoixa/image-tier/internal/access"
	"github.com/anoixa/image-tier/internal/auth"
	"github.com/anoixa/image-tier/internal/binarylink"
	imageSvc "github.com/anoixa/image-tier/internal/image"
	tiersSvc "github.com/anoixa/image-tier/internal/tiers"
	"github.com/anoixa/image-tier/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ServerDependencies 服务器依赖项
type ServerDependencies struct {
	DB      *gorm.DB
	Storage storage.Provider
	Cache   cache.Provider

	ArtifactsRepo *artifacts.Repository
	UsersRepo     *users.Repository
	TiersRepo     *tiersRepo.Repository
	HeightsRepo   *heights.Repository

	JWTService   *auth.JWTService
	LoginService *auth.LoginService

	UploadService *imageSvc.UploadService
	QueryService  *imageSvc.QueryService
	DeleteService *imageSvc.DeleteService
	TiersService  *tiersSvc.Service

	Controller *access.Controller
	Issuer     *binarylink.Issuer
}

// 启动gin
func setupRouter(deps *ServerDependencies) (*gin.Engine, func()) {
	cfg := config.Get()
	router := gin.New()

	// 全局中间件
	// 仅在开发版本时启用 gin 日志
	if config.CommitHash == "n/a" {
		router.Use(gin.Logger())
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.BaseURL()},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.SetTrustedProxies(nil)

	// 限制上传文件大小
	router.MaxMultipartMemory = int64(cfg.UploadMaxSizeMB) << 20

	// 速率限制：登录接口独立于图片接口限流
	authLimiter := middleware.NewIPRateLimiter(5, 10, cfg.RateLimitExpireTime)
	imageLimiter := middleware.NewIPRateLimiter(cfg.RateLimitImageRPS, cfg.RateLimitImageBurst, cfg.RateLimitExpireTime)
	cleanup := func() {
		authLimiter.StopCleanup()
		imageLimiter.StopCleanup()
	}

	registerBasicRoutes(router, deps)
	registerAPIRoutes(router, deps, authLimiter, imageLimiter)

	return router, cleanup
}

// StartServer 创建 http.Server
func StartServer(deps *ServerDependencies) (*http.Server, func()) {
	cfg := config.Get()
	router, clean := setupRouter(deps)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return srv, clean
}
