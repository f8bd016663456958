package handlers

import (
	"context"
	"time"

	"hostel-leave-api/internal/config"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	cfg  *config.Config
	ping func(ctx context.Context) error
}

// NewHealthHandler creates a new health handler; ping probes the database
func NewHealthHandler(cfg *config.Config, ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{cfg: cfg, ping: ping}
}

// Root handles root endpoint
// @Summary Root endpoint
// @Description Returns API status
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "running",
		"message": "🏠 Hostel Leave API is running",
		"mode":    h.cfg.AppMode,
		"docs":    "/swagger/index.html",
	})
}

// HealthCheck handles health check
// @Summary Health check
// @Description Liveness probe with a database check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	dbStatus := "healthy"
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			dbStatus = "unhealthy"
		}
	}

	return c.JSON(fiber.Map{
		"status":  "ok",
		"message": "Server is healthy",
		"checks": fiber.Map{
			"api":      "healthy",
			"database": dbStatus,
		},
	})
}
