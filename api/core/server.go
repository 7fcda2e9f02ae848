package core

import (
	"net/http"
	"time"

	"github.com/corvell/imagetier/api"
	"github.com/corvell/imagetier/api/common"
	handlerGroups "github.com/corvell/imagetier/api/handler/groups"
	handlerImages "github.com/corvell/imagetier/api/handler/images"
	handlerLinks "github.com/corvell/imagetier/api/handler/links"
	"github.com/corvell/imagetier/api/middleware"
	"github.com/corvell/imagetier/cache"
	"github.com/corvell/imagetier/config"
	groupsRepo "github.com/corvell/imagetier/database/repo/groups"
	imagesRepo "github.com/corvell/imagetier/database/repo/images"
	"github.com/corvell/imagetier/internal/access"
	"github.com/corvell/imagetier/internal/auth"
	imageSvc "github.com/corvell/imagetier/internal/image"
	linkSvc "github.com/corvell/imagetier/internal/links"
	"github.com/corvell/imagetier/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var startTime = time.Now()

// ServerDependencies 服务器依赖项
type ServerDependencies struct {
	DB             *gorm.DB
	StorageFactory *storage.Factory
	CacheProvider  cache.Provider

	ImagesRepo *imagesRepo.Repository
	GroupsRepo *groupsRepo.Repository

	JWTService   *auth.JWTService
	LoginService *auth.LoginService
	Authorizer   *access.Authorizer
	Deriver      *imageSvc.Deriver
	LinkService  *linkSvc.Service
}

// 启动gin
func setupRouter(deps *ServerDependencies) (*gin.Engine, func()) {
	cfg := config.Get()

	// 仅在开发版本时启用 gin 日志
	if config.CommitHash != "n/a" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if config.CommitHash == "n/a" {
		router.Use(gin.Logger())
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

	// 速率限制
	authRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst, cfg.RateLimitExpireTime)
	apiRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitApiRPS, cfg.RateLimitApiBurst, cfg.RateLimitExpireTime)
	imageRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitImageRPS, cfg.RateLimitImageBurst, cfg.RateLimitExpireTime)
	cleanup := func() {
		authRateLimiter.StopCleanup()
		apiRateLimiter.StopCleanup()
		imageRateLimiter.StopCleanup()
	}

	registerBasicRoutes(router, deps)

	defaultStorage := deps.StorageFactory.GetDefault()

	// 创建处理器（依赖注入）
	imageHandler := handlerImages.NewHandler(deps.ImagesRepo, deps.Deriver, deps.Authorizer, defaultStorage, deps.CacheProvider, cfg)
	groupHandler := handlerGroups.NewHandler(deps.GroupsRepo)
	linkHandler := handlerLinks.NewHandler(deps.LinkService, deps.Authorizer, defaultStorage, deps.CacheProvider)
	loginHandler := api.NewLoginHandler(deps.LoginService)

	// 临时链接兑换是唯一的公共图片出口
	publicGroup := router.Group("/links")
	publicGroup.Use(imageRateLimiter.Middleware())
	{
		publicGroup.GET("/:id", linkHandler.RedeemLink) // GET /links/{id}
	}

	apiGroup := router.Group("/api")
	apiGroup.Use(func(context *gin.Context) { // 所有API禁止缓存
		context.Header("Cache-Control", "no-store")
		context.Next()
	})
	{
		authGroup := apiGroup.Group("/auth")
		authGroup.Use(authRateLimiter.Middleware())
		{
			authGroup.POST("/login", loginHandler.LoginHandlerFunc)          // POST /api/auth/login
			authGroup.POST("/refresh", loginHandler.RefreshTokenHandlerFunc) // POST /api/auth/refresh
		}

		v1 := apiGroup.Group("/v1")
		v1.Use(apiRateLimiter.Middleware())
		v1.Use(middleware.RequireAuth(deps.JWTService))
		{
			// image
			imagesGroup := v1.Group("/images")
			{
				imagesGroup.POST("", imageHandler.UploadImage)                             // POST /api/v1/images
				imagesGroup.GET("", imageHandler.ListImages)                               // GET /api/v1/images
				imagesGroup.GET("/:identifier", imageHandler.GetImage)                     // GET /api/v1/images/{identifier}
				imagesGroup.GET("/:identifier/file", imageHandler.GetImageFile)            // GET /api/v1/images/{identifier}/file
				imagesGroup.GET("/:identifier/thumbnail/:height", imageHandler.GetThumbnail) // GET /api/v1/images/{identifier}/thumbnail/{height}
			}

			// group 管理仅限管理员
			groupsGroup := v1.Group("/groups")
			groupsGroup.Use(middleware.RequireAdmin())
			{
				groupsGroup.POST("", groupHandler.CreateGroup) // POST /api/v1/groups
				groupsGroup.GET("", groupHandler.ListGroups)   // GET /api/v1/groups
				groupsGroup.GET("/:id", groupHandler.GetGroup) // GET /api/v1/groups/{id}
			}

			// temporary links
			linksGroup := v1.Group("/links")
			{
				linksGroup.POST("", linkHandler.MintLink) // POST /api/v1/links
			}
		}
	}

	return router, cleanup
}

// registerBasicRoutes 注册基础路由
func registerBasicRoutes(router *gin.Engine, deps *ServerDependencies) {
	router.GET("/health", func(context *gin.Context) {
		health := gin.H{
			"status":  "ok",
			"uptime":  time.Since(startTime).Round(time.Second).String(),
			"version": config.Version,
			"checks": gin.H{
				"database": checkDatabaseHealth(deps.DB),
				"cache":    checkCacheHealth(deps.CacheProvider),
				"storage":  checkStorageHealth(deps.StorageFactory),
			},
		}
		httpStatus := http.StatusOK
		for _, checkResult := range health["checks"].(gin.H) {
			if result, ok := checkResult.(string); ok && result != "ok" {
				httpStatus = http.StatusServiceUnavailable
				break
			}
		}
		context.JSON(httpStatus, health)
	})

	router.GET("/version", func(context *gin.Context) {
		common.RespondSuccess(context, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})
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
