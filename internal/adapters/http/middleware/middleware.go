package middleware

import (
	"errors"
	"log"
	"time"

	"hostel-leave-api/internal/config"
	"hostel-leave-api/internal/core/domain"
	"hostel-leave-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Setup configures all middlewares for the application.
// storage backs the rate limiters; nil keeps counters in process memory.
func Setup(app *fiber.App, cfg *config.Config, storage fiber.Storage) {
	// Recover middleware - catches panics
	app.Use(recover.New())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Security Headers middleware (Helmet)
	app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "SAMEORIGIN",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginEmbedderPolicy: "require-corp",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "cross-origin", // the SPA lives on another origin
		PermissionPolicy:          "geolocation=(), microphone=(), camera=()",
	}))

	// Rate Limiter middleware - General API (100 requests per minute per IP)
	app.Use(newLimiter(cfg, storage, cfg.RateLimit.GeneralMax, "", "Too many requests, please slow down"))

	// Logger middleware
	if cfg.IsDev() {
		app.Use(logger.New(logger.Config{
			Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
		}))
	} else {
		app.Use(logger.New(logger.Config{
			Format:     "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${error}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}

	// CORS middleware: the session cookie needs credentials, which cannot pair with "*"
	origins := cfg.GetAllowedOrigins()
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: origins != "*",
	}))
}

func newLimiter(cfg *config.Config, storage fiber.Storage, max int, suffix, message string) fiber.Handler {
	if !cfg.RateLimit.Enabled {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: 1 * time.Minute,
		Storage:    storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + suffix
		},
		LimitReached: func(c *fiber.Ctx) error {
			return response.TooManyRequests(c, message)
		},
	})
}

// AuthRateLimiter creates a stricter rate limiter for auth endpoints
// 5 requests per minute per IP (for login, register, etc.)
func AuthRateLimiter(cfg *config.Config, storage fiber.Storage) fiber.Handler {
	return newLimiter(cfg, storage, cfg.RateLimit.AuthMax, "-auth", "Too many login attempts, please wait a minute")
}

// StrictRateLimiter creates an even stricter rate limiter for sensitive operations
// 3 requests per minute per IP (for password reset, etc.)
func StrictRateLimiter(cfg *config.Config, storage fiber.Storage) fiber.Handler {
	return newLimiter(cfg, storage, cfg.RateLimit.StrictMax, "-strict", "Rate limit exceeded, please wait before retrying")
}

// CustomErrorHandler translates every error returned by handlers into the JSON envelope
func CustomErrorHandler(c *fiber.Ctx, err error) error {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return response.ValidationFailed(c, validationErr.Fields)
	}

	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		if appErr.Code >= fiber.StatusInternalServerError {
			log.Printf("❌ %s %s: %v", c.Method(), c.Path(), err)
		}
		return response.Error(c, appErr.Code, appErr.Message)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return response.Error(c, fiberErr.Code, fiberErr.Message)
	}

	log.Printf("❌ %s %s: %v", c.Method(), c.Path(), err)
	return response.Error(c, fiber.StatusInternalServerError, domain.ErrInternal.Message)
}
