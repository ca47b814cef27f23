package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
)

// Pinger checks a backing service is reachable. *db.DB implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness/readiness probe.
type HealthHandler struct {
	db      Pinger
	timeout time.Duration
}

// NewHealthHandler creates a new API health handler.
func NewHealthHandler(database Pinger) *HealthHandler {
	return &HealthHandler{db: database, timeout: 2 * time.Second}
}

// Healthz reports whether the database answers.
func (h *HealthHandler) Healthz(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "database unavailable")
	}
	return jsonSuccess(c, fiber.Map{"database": "ok"})
}
