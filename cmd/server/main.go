package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hostel-leave-api/internal/adapters/http/middleware"
	"hostel-leave-api/internal/adapters/http/routes"
	"hostel-leave-api/internal/config"
	"hostel-leave-api/internal/core/services"
	"hostel-leave-api/internal/pkg/jwt"
	"hostel-leave-api/internal/pkg/ratestore"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	_ "hostel-leave-api/docs" // Swagger docs
)

// @title Hostel Leave API
// @version 1.0
// @description Hostel leave management: accounts, profiles and leave requests.

// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := config.OpenStore(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("❌ Error closing database: %v", err)
		}
	}()

	// Seed the first admin from ADMIN_* env
	if err := config.NewSeeder(store.Users, cfg.Admin).Run(context.Background()); err != nil {
		log.Printf("⚠️ Warning: Failed to seed admin user: %v", err)
	}

	// Shared rate-limit counters
	var limiterStorage fiber.Storage
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("❌ Invalid REDIS_URL: %v", err)
		}
		limiterStorage = ratestore.New(redis.NewClient(opts), "hostel-leave:limiter:")
		defer limiterStorage.Close()
		log.Println("✅ Rate limiter using Redis")
	}

	tokens := jwt.NewHMACIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	mailer := services.NewNotificationService(cfg.Mail, cfg.ResetTokenTTL)

	deps := &routes.Dependencies{
		Store:          store,
		Tokens:         tokens,
		Mailer:         mailer,
		LimiterStorage: limiterStorage,
	}
	uploader, err := services.NewCloudinaryUploader(cfg.Cloudinary)
	if err != nil {
		log.Fatalf("❌ Failed to configure avatar upload: %v", err)
	}
	if uploader != nil {
		deps.Avatars = uploader
	}

	// Start cron jobs (reset token purge, pending digest)
	cronService := services.NewCronService(store.Users, services.NewLeaveService(store.Leaves, store.Users))
	if err := cronService.Start(); err != nil {
		log.Fatalf("❌ Failed to start cron: %v", err)
	}
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Hostel Leave API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
		BodyLimit:    8 * 1024 * 1024,
	})

	// Setup middlewares
	middleware.Setup(app, cfg, limiterStorage)

	// Setup routes
	routes.Setup(app, deps, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
