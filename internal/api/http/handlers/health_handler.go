package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// Pinger verifies backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler exposes liveness/readiness probes.
type HealthHandler struct {
	backend Pinger
}

// NewHealthHandler constructs handler. backend may be nil for the in-memory
// store.
func NewHealthHandler(backend Pinger) *HealthHandler {
	return &HealthHandler{backend: backend}
}

// Live GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready GET /health/ready.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.backend != nil {
		if err := h.backend.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "degraded",
				"error":  err.Error(),
			})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
