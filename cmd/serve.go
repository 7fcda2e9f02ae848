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

	"github.com/corvell/imagetier/api/core"
	"github.com/corvell/imagetier/cache"
	"github.com/corvell/imagetier/config"
	"github.com/corvell/imagetier/database/dbcore"
	"github.com/corvell/imagetier/database/repo/accounts"
	groupsRepo "github.com/corvell/imagetier/database/repo/groups"
	imagesRepo "github.com/corvell/imagetier/database/repo/images"
	linksRepo "github.com/corvell/imagetier/database/repo/links"
	"github.com/corvell/imagetier/internal/access"
	"github.com/corvell/imagetier/internal/auth"
	imageSvc "github.com/corvell/imagetier/internal/image"
	linkSvc "github.com/corvell/imagetier/internal/links"
	"github.com/corvell/imagetier/storage"
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

	db, err := dbcore.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbcore.Close(db)

	// 自动DDL
	if err := dbcore.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to auto migrate database: %v", err)
	}
	log.Println("Database initialized successfully")

	accountsRepo := accounts.NewRepository(db)
	accountsRepo.CreateDefaultAdminUser(cfg.AdminUsername, cfg.AdminPassword)

	groupRepo := groupsRepo.NewRepository(db)
	imageRepo := imagesRepo.NewRepository(db)
	thumbnailRepo := imagesRepo.NewThumbnailRepository(db)
	linkRepo := linksRepo.NewRepository(db)

	storageFactory, err := storage.NewFactory(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	cacheProvider, err := cache.NewProvider(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	defer func() { _ = cacheProvider.Close() }()

	jwtService, err := auth.NewJWTService(cfg.JwtSecret, cfg.JwtExpiresIn, cfg.JwtRefreshExpiresIn)
	if err != nil {
		log.Fatalf("Failed to initialize JWT: %v", err)
	}
	loginService := auth.NewLoginService(accountsRepo, jwtService)

	authorizer := access.NewAuthorizer(groupRepo)
	deriver := imageSvc.NewDeriver(thumbnailRepo, storageFactory.GetDefault())
	linkService := linkSvc.NewService(linkRepo, imageRepo, authorizer, cfg.BaseURL())

	// 创建服务器依赖
	deps := &core.ServerDependencies{
		DB:             db,
		StorageFactory: storageFactory,
		CacheProvider:  cacheProvider,
		ImagesRepo:     imageRepo,
		GroupsRepo:     groupRepo,
		JWTService:     jwtService,
		LoginService:   loginService,
		Authorizer:     authorizer,
		Deriver:        deriver,
		LinkService:    linkService,
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

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited successfully")
}
