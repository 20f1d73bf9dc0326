package handlers

import (
	"context"

	"github.com/gofiber/fiber/v3"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SchemaReporter reports the applied migration version.
type SchemaReporter interface {
	SchemaVersion(ctx context.Context) (int64, bool, error)
}

// ProbeStore is what the readiness probe checks.
type ProbeStore interface {
	Pinger
	SchemaReporter
}

// ProbeHandler handles Kubernetes health probe endpoints.
type ProbeHandler struct {
	db       ProbeStore
	serpMode string
}

// NewProbeHandler creates a new probe handler. serpMode is reported by the
// readiness probe so operators can see whether live scraping is on.
func NewProbeHandler(database ProbeStore, serpMode string) *ProbeHandler {
	return &ProbeHandler{db: database, serpMode: serpMode}
}

// Liveness handles the /healthz endpoint.
func (h *ProbeHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// Readiness handles the /readyz endpoint. It fails while the database is
// unreachable or a migration is half-applied.
func (h *ProbeHandler) Readiness(c fiber.Ctx) error {
	ctx := c.Context()
	if err := h.db.Ping(ctx); err != nil {
		return notReady(c, "database unavailable")
	}

	version, dirty, err := h.db.SchemaVersion(ctx)
	if err != nil {
		return notReady(c, "schema not migrated")
	}
	if dirty {
		return notReady(c, "schema migration incomplete")
	}

	return c.JSON(fiber.Map{
		"status": "ok",
		"data": fiber.Map{
			"schemaVersion": version,
			"serpMode":      h.serpMode,
		},
	})
}

func notReady(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"status": "error",
		"error":  msg,
	})
}
