package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anoixa/image-tier/api/core"
	"github.com/anoixa/image-tier/cache"
	"github.com/anoixa/image-tier/config"
	"github.com/anoixa/image-tier/database"
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
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start API server",
	Run: func(cmd *cobra.Command, args []string) {
		RunServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer() {
	config.InitConfig()
	cfg := config.Get()

	if err := os.MkdirAll("./data", os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// 数据库
	db, err := database.NewDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to auto migrate database: %v", err)
	}
	log.Printf("Database initialized, type: %s", cfg.DBType)

	// 存储
	storageFactory, err := storage.NewFactory(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	storageProvider := storageFactory.GetDefault()
	log.Printf("Storage initialized, provider: %s", storageProvider.Name())

	// 缓存（二值图链接令牌）
	cacheProvider, err := cache.NewProvider(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	log.Printf("Cache initialized, provider: %s", cacheProvider.Name())

	// 仓库
	artifactsRepository := artifacts.NewRepository(db)
	usersRepository := users.NewRepository(db)
	tiersRepository := tiersRepo.NewRepository(db)
	heightsRepository := heights.NewRepository(db)

	// JWT 与登录
	jwtService, err := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiresIn)
	if err != nil {
		log.Fatalf("Failed to initialize JWT: %v", err)
	}
	loginService := auth.NewLoginService(usersRepository, jwtService)

	// 领域服务
	synchronizer := imageSvc.NewSynchronizer(artifactsRepository, storageProvider)
	controller := access.NewController(usersRepository)
	uploadService := imageSvc.NewUploadService(artifactsRepository, usersRepository, storageProvider, synchronizer)
	queryService := imageSvc.NewQueryService(artifactsRepository, usersRepository, cfg.BaseURL())
	deleteService := imageSvc.NewDeleteService(artifactsRepository, storageProvider)
	tiersService := tiersSvc.NewService(tiersRepository, heightsRepository, usersRepository, artifactsRepository, synchronizer)
	issuer := binarylink.NewIssuer(cacheProvider, artifactsRepository, controller, storageProvider)

	deps := &core.ServerDependencies{
		DB:      db,
		Storage: storageProvider,
		Cache:   cacheProvider,

		ArtifactsRepo: artifactsRepository,
		UsersRepo:     usersRepository,
		TiersRepo:     tiersRepository,
		HeightsRepo:   heightsRepository,

		JWTService:   jwtService,
		LoginService: loginService,

		UploadService: uploadService,
		QueryService:  queryService,
		DeleteService: deleteService,
		TiersService:  tiersService,

		Controller: controller,
		Issuer:     issuer,
	}

	// 启动gin
	server, cleanup := core.StartServer(deps)
	go func() {
		log.Printf("Server started on %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// 处理退出signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if cleanup != nil {
		cleanup()
		log.Println("Cleanup tasks finished.")
	}

	if err := cacheProvider.Close(); err != nil {
		log.Printf("Error closing cache provider: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited successfully")
}
