package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"campus-news-api/config"
	"campus-news-api/gateway"
	"campus-news-api/handlers"
	"campus-news-api/middleware"
	"campus-news-api/repositories"
	"campus-news-api/scheduler"
	"campus-news-api/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Initialize database
	db := config.InitDB()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	articleRepo := repositories.NewArticleRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	moderationLogRepo := repositories.NewModerationLogRepository(db)

	// Initialize delivery gateway
	mailer := gateway.NewSMTPMailer(cfg.SMTP, logger)
	pusher := gateway.NewFCMPusher(cfg.Push, logger)

	// Initialize services
	roleService := services.NewRoleService(roleRepo)
	if err := roleService.EnsureDefaultRoles(); err != nil {
		logger.Fatal("Failed to seed roles", zap.Error(err))
	}
	authService := services.NewAuthService(userRepo)
	articleService := services.NewArticleService(articleRepo, categoryRepo)
	notificationService := services.NewNotificationService(
		userRepo, notificationRepo, mailer, pusher, cfg.Notifier.Workers, logger)
	moderationService := services.NewModerationService(
		articleRepo, moderationLogRepo, notificationService, logger)
	digestService := services.NewDigestService(
		userRepo, articleRepo, notificationRepo, mailer, logger)

	// Start the digest scheduler
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	digestScheduler := scheduler.NewDigestScheduler(digestService, cfg.Scheduler, logger)
	digestScheduler.Start(ctx)
	defer digestScheduler.Stop()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	articleHandler := handlers.NewArticleHandler(articleService, authService)
	moderationHandler := handlers.NewModerationHandler(moderationService, authService)
	categoryHandler := handlers.NewCategoryHandler(categoryRepo, authService)
	adminHandler := handlers.NewAdminHandler(digestService, notificationService, roleService, authService)

	// Setup router
	router := gin.Default()
	router.Use(middleware.RequestID())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// API routes
	v1 := router.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Protected routes
		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			// Profile
			protected.GET("/profile", authHandler.GetProfile)
			protected.GET("/notifications", adminHandler.MyNotifications)

			// Articles
			articles := protected.Group("/articles")
			{
				articles.POST("", articleHandler.CreateArticle)
				articles.GET("", articleHandler.GetArticles)
				articles.GET("/mine", articleHandler.MyArticles)
				articles.GET("/:id", articleHandler.GetArticle)
				articles.POST("/:id/submit", moderationHandler.Submit)
				articles.POST("/:id/approve", moderationHandler.Approve)
				articles.POST("/:id/reject", moderationHandler.Reject)
				articles.POST("/:id/invalidate", moderationHandler.Invalidate)
				articles.POST("/:id/publish", moderationHandler.DirectPublish)
				articles.GET("/:id/history", moderationHandler.History)
			}

			// Moderation queue
			protected.GET("/moderation/pending", moderationHandler.ListPending)

			// Categories
			categories := protected.Group("/categories")
			{
				categories.POST("", categoryHandler.CreateCategory)
				categories.GET("", categoryHandler.GetCategories)
			}

			// Admin: role listing and manual digest trigger
			protected.GET("/roles", adminHandler.ListRoles)
			protected.POST("/admin/digests/:cadence", adminHandler.RunDigest)
		}

		// Public article routes (published only)
		public := v1.Group("/public")
		{
			public.GET("/articles", articleHandler.GetPublicArticles)
			public.GET("/articles/:id", articleHandler.GetPublicArticle)
		}
	}

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("Server starting", zap.String("port", port))
	log.Fatal(http.ListenAndServe(":"+port, router))
}
