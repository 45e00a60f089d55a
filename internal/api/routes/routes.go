package routes

import (
	"strings"

	"brotodesk/internal/api/handlers"
	"brotodesk/internal/api/middleware"
	"brotodesk/internal/config"
	"brotodesk/internal/events"
	"brotodesk/internal/services"
	"brotodesk/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Dependencies are the collaborators the HTTP layer is built from. Redis
// and Events are optional.
type Dependencies struct {
	Config *config.Config
	DB     *gorm.DB
	Files  storage.FileStore
	Events events.Publisher
	Redis  *redis.Client
}

func SetupRoutes(r *gin.Engine, deps Dependencies) {
	cfg := deps.Config

	// Initialize services
	authService := services.NewAuthService(deps.DB, cfg)
	userService := services.NewUserService(deps.DB)
	complaintService := services.NewComplaintService(deps.DB, deps.Files, deps.Events, cfg.Complaints.StrictTransitions)
	attachmentService := services.NewAttachmentService(deps.DB, deps.Files, cfg.Storage.MaxUploadBytes)
	notificationService := services.NewNotificationService(deps.DB)
	analyticsService := services.NewAnalyticsService(deps.DB)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	complaintHandler := handlers.NewComplaintHandler(complaintService)
	attachmentHandler := handlers.NewAttachmentHandler(attachmentService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	// Middleware
	r.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigins))
	r.Use(middleware.ErrorHandler())

	r.GET("/health", handlers.Health)

	// Uploaded files are served directly when kept on local disk
	if disk, ok := deps.Files.(*storage.DiskStore); ok {
		r.Static(disk.Prefix(), disk.Root())
	}

	api := r.Group("/api/v1")

	// Public routes
	auth := api.Group("/auth")
	auth.Use(middleware.RateLimit(deps.Redis, rateLimit(cfg)))
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.Authenticate(authService))
	{
		protected.GET("/users/me", userHandler.GetMe)

		complaints := protected.Group("/complaints")
		{
			complaints.POST("", complaintHandler.Create)
			complaints.GET("", complaintHandler.List)
			complaints.GET("/:id", complaintHandler.Get)
			complaints.POST("/:id/status", middleware.RequireAdmin(), complaintHandler.UpdateStatus)
			complaints.POST("/:id/assign", middleware.RequireAdmin(), complaintHandler.Assign)
			complaints.DELETE("/:id", middleware.RequireAdmin(), complaintHandler.Delete)

			complaints.POST("/:id/attachments", attachmentHandler.Upload)
			complaints.GET("/:id/attachments", attachmentHandler.List)
			complaints.DELETE("/attachments/:attachmentId", attachmentHandler.Delete)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", notificationHandler.List)
			notifications.POST("/mark-read", notificationHandler.MarkRead)
		}

		protected.GET("/analytics/summary", middleware.RequireAdmin(), analyticsHandler.Summary)
	}

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(404, gin.H{"error": "API endpoint not found"})
			return
		}
		c.JSON(404, gin.H{"error": "Not found"})
	})
}

func rateLimit(cfg *config.Config) int {
	if !cfg.Security.RateLimit.Enabled {
		return 0
	}
	return cfg.Security.RateLimit.RequestsPerMinute
}
