package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brotodesk/internal/api/routes"
	"brotodesk/internal/config"
	"brotodesk/internal/events"
	"brotodesk/internal/models"
	"brotodesk/internal/services"
	"brotodesk/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// A missing .env file is fine; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	configPath := os.Getenv("BROTODESK_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := models.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer models.Close(db)

	if err := models.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create default user if database is empty
	authService := services.NewAuthService(db, cfg)
	if err := authService.CreateDefaultUser(ctx); err != nil {
		log.Printf("Warning: Failed to create default user: %v", err)
	}

	files, err := openFileStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize file storage: %v", err)
	}

	publisher := openPublisher(cfg)
	defer publisher.Close()

	rdb := openRedis(ctx, cfg)
	if rdb != nil {
		defer rdb.Close()
	}

	// Set Gin mode
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	routes.SetupRoutes(r, routes.Dependencies{
		Config: cfg,
		DB:     db,
		Files:  files,
		Events: publisher,
		Redis:  rdb,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting BrotoDesk server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}

func openFileStore(ctx context.Context, cfg *config.Config) (storage.FileStore, error) {
	switch cfg.Storage.Driver {
	case "firebase":
		log.Printf("Using Firebase storage bucket %s", cfg.Storage.Firebase.Bucket)
		return storage.NewFirebaseStore(ctx, cfg.Storage.Firebase.CredentialsFile, cfg.Storage.Firebase.Bucket)
	default:
		log.Printf("Using disk storage at %s", cfg.Storage.Disk.Path)
		return storage.NewDiskStore(cfg.Storage.Disk.Path, cfg.Storage.Disk.PublicPrefix)
	}
}

// openPublisher falls back to a no-op publisher when RabbitMQ is not
// configured or unreachable. The broker is fed from a background queue.
func openPublisher(cfg *config.Config) events.Publisher {
	if cfg.RabbitMQ.URL == "" {
		return events.Nop{}
	}
	p, err := events.NewAMQPPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
	if err != nil {
		log.Printf("Warning: events disabled: %v", err)
		return events.Nop{}
	}
	log.Printf("Publishing complaint events to exchange %s", cfg.RabbitMQ.Exchange)
	return events.NewAsync(p, 1024, 5*time.Second)
}

// openRedis returns nil when rate limiting is off or Redis cannot be reached
func openRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if !cfg.Security.RateLimit.Enabled {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Printf("Warning: rate limiting disabled, redis unavailable: %v", err)
		client.Close()
		return nil
	}
	return client
}
