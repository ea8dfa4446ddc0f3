package core

import (
	"net/http"
	"time"

	"github.com/anoixa/image-tier/api/common"
	handlerAccounts "github.com/anoixa/image-tier/api/handler/accounts"
	handlerImages "github.com/anoixa/image-tier/api/handler/images"
	handlerTiers "github.com/anoixa/image-tier/api/handler/tiers"
	"github.com/anoixa/image-tier/api/middleware"
	"github.com/anoixa/image-tier/config"
	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// registerBasicRoutes 注册基础路由
func registerBasicRoutes(router *gin.Engine, deps *ServerDependencies) {
	router.GET("/health", func(c *gin.Context) {
		checks := gin.H{
			"database": checkDatabaseHealth(deps.DB),
			"cache":    checkCacheHealth(deps.Cache),
			"storage":  checkStorageHealth(deps.Storage),
		}
		httpStatus := http.StatusOK
		for _, result := range checks {
			if s, ok := result.(string); ok && s != "ok" {
				httpStatus = http.StatusServiceUnavailable
				break
			}
		}
		c.JSON(httpStatus, gin.H{
			"status":  "ok",
			"uptime":  time.Since(startTime).Round(time.Second).String(),
			"version": config.Version,
			"checks":  checks,
		})
	})

	router.GET("/version", func(c *gin.Context) {
		common.RespondSuccess(c, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})
}

// registerAPIRoutes 注册 API 路由
func registerAPIRoutes(router *gin.Engine, deps *ServerDependencies, authLimiter, imageLimiter *middleware.IPRateLimiter) {
	cfg := config.Get()

	imageHandler := handlerImages.NewHandler(
		deps.UploadService,
		deps.QueryService,
		deps.DeleteService,
		deps.ArtifactsRepo,
		deps.Controller,
		deps.Issuer,
		deps.Storage,
		cfg.UploadMaxSizeMB,
	)
	tierHandler := handlerTiers.NewHandler(deps.TiersService, deps.TiersRepo, deps.HeightsRepo)
	authHandler := handlerAccounts.NewHandler(deps.LoginService)

	apiGroup := router.Group("/api")
	apiGroup.Use(func(c *gin.Context) { // 所有API禁止缓存
		c.Header("Cache-Control", "no-store")
		c.Next()
	})
	{
		authGroup := apiGroup.Group("/auth")
		authGroup.Use(authLimiter.Middleware())
		{
			authGroup.POST("/login", authHandler.Login) // POST /api/auth/login
		}

		imagesGroup := apiGroup.Group("/images")
		imagesGroup.Use(imageLimiter.Middleware())
		imagesGroup.Use(middleware.BearerAuth(deps.JWTService))
		{
			imagesGroup.POST("", imageHandler.Upload)                          // POST /api/images
			imagesGroup.GET("", imageHandler.List)                             // GET /api/images
			imagesGroup.DELETE("/:id", imageHandler.Delete)                    // DELETE /api/images/{id}
			imagesGroup.GET("/file/*path", imageHandler.GetFile)               // GET /api/images/file/{path}
			imagesGroup.POST("/binary-link/*path", imageHandler.IssueBinaryLink) // POST /api/images/binary-link/{path}
			imagesGroup.GET("/binary/:token", imageHandler.GetBinary)          // GET /api/images/binary/{token}
		}

		adminGroup := apiGroup.Group("/admin")
		adminGroup.Use(middleware.BearerAuth(deps.JWTService))
		{
			adminGroup.POST("/heights", tierHandler.CreateHeight) // POST /api/admin/heights
			adminGroup.GET("/heights", tierHandler.ListHeights)   // GET /api/admin/heights

			adminGroup.POST("/tiers", tierHandler.CreateTier)                              // POST /api/admin/tiers
			adminGroup.GET("/tiers", tierHandler.ListTiers)                                // GET /api/admin/tiers
			adminGroup.DELETE("/tiers/:id", tierHandler.DeleteTier)                        // DELETE /api/admin/tiers/{id}
			adminGroup.POST("/tiers/:id/heights", tierHandler.ExtendTier)                  // POST /api/admin/tiers/{id}/heights
			adminGroup.DELETE("/tiers/:id/heights/:heightID", tierHandler.ShrinkTier)      // DELETE /api/admin/tiers/{id}/heights/{heightID}
			adminGroup.PUT("/users/:id/tier", tierHandler.AssignUserTier)                  // PUT /api/admin/users/{id}/tier
		}
	}
}
