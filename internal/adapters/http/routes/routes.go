package routes

import (
	"hostel-leave-api/internal/adapters/http/handlers"
	"hostel-leave-api/internal/adapters/http/middleware"
	"hostel-leave-api/internal/adapters/persistence/repositories"
	"hostel-leave-api/internal/config"
	"hostel-leave-api/internal/core/services"
	"hostel-leave-api/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the collaborators the routes are built from
type Dependencies struct {
	Store   *repositories.Store
	Tokens  jwt.Issuer
	Mailer  services.Mailer
	Avatars services.AvatarUploader

	// LimiterStorage backs the rate limiters; nil keeps counters in memory
	LimiterStorage fiber.Storage
}

// Setup configures all routes for the application
func Setup(app *fiber.App, deps *Dependencies, cfg *config.Config) {
	// Initialize services
	authService := services.NewAuthService(deps.Store.Users, deps.Tokens, deps.Mailer, cfg)
	userService := services.NewUserService(deps.Store.Users, deps.Avatars)
	leaveService := services.NewLeaveService(deps.Store.Leaves, deps.Store.Users)
	exportService := services.NewExportService(leaveService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg, deps.Store.Ping)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	leaveHandler := handlers.NewLeaveHandler(leaveService, exportService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)

	// Metrics
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api")
	api.Get("/health", healthHandler.HealthCheck)

	requireAuth := middleware.AuthMiddleware(deps.Tokens, cfg.Cookie.Name)

	setupAuthRoutes(api.Group("/auth"), authHandler, deps, cfg)

	userRoutes := api.Group("/user", requireAuth, middleware.NoCacheHeaders())
	setupUserRoutes(userRoutes, userHandler)

	leaveRoutes := api.Group("/leaves", requireAuth)
	setupLeaveRoutes(leaveRoutes, leaveHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, deps *Dependencies, cfg *config.Config) {
	authLimiter := middleware.AuthRateLimiter(cfg, deps.LimiterStorage)
	strictLimiter := middleware.StrictRateLimiter(cfg, deps.LimiterStorage)

	router.Post("/register", authLimiter, handler.Register)
	router.Post("/login", authLimiter, handler.Login)
	router.Post("/google-login", authLimiter, handler.GoogleLogin)
	router.Get("/logout", middleware.OptionalAuth(deps.Tokens, cfg.Cookie.Name), handler.Logout)

	router.Post("/forgot-password", strictLimiter, handler.ForgotPassword)
	router.Post("/reset-password/:token", strictLimiter, handler.ResetPassword)
}

// setupUserRoutes configures profile routes (authenticated)
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/me", handler.Me)
	router.Post("/complete-profile", handler.CompleteProfile)

	router.Get("/get-user/:userid", middleware.SelfOrAdmin("userid"), handler.GetUser)
	router.Put("/update-user/:userid", middleware.SelfOrAdmin("userid"), handler.UpdateUser)
}

// setupLeaveRoutes configures leave routes (authenticated).
// Fixed paths are registered before /:id.
func setupLeaveRoutes(router fiber.Router, handler *handlers.LeaveHandler) {
	adminOnly := middleware.AdminOnly()

	router.Post("/apply", handler.Apply)
	router.Get("/my-leaves", handler.MyLeaves)

	router.Get("/admin-summary", adminOnly, handler.AdminSummary)
	router.Get("/admin-analytics", adminOnly, handler.AdminAnalytics)
	router.Get("/export", adminOnly, handler.Export)
	router.Put("/bulk-status", adminOnly, handler.BulkStatus)
	router.Get("/", adminOnly, handler.AllLeaves)

	router.Get("/:id", handler.GetByID)
	router.Put("/:leaveId/status", adminOnly, handler.UpdateStatus)
}
