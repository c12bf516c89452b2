package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type dependency struct {
	name   string
	pinger Pinger
}

// HealthHandler serves the service banner and the liveness/readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	deps        []dependency
}

// NewHealthHandler returns a new handler instance. redis is nil when the deny-list is disabled
// and is then reported as "disabled" without affecting readiness.
func NewHealthHandler(serviceName, version string, postgres, redis Pinger) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		deps:        []dependency{{"postgres", postgres}, {"redis", redis}},
	}
}

// Root handles GET /.
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": h.serviceName,
		"version": h.version,
		"api":     "/api/v1",
	})
}

// Live handles GET /health and GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "alive", "service": h.serviceName, "version": h.version})
}

// Ready handles GET /health/ready.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	statuses, ready := h.probe(ctx)
	if !ready {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "DEPENDENCY_UNAVAILABLE",
				"message": "one or more dependencies unavailable",
				"details": statuses,
			},
		})
	}
	return c.JSON(fiber.Map{"status": "ready", "dependencies": statuses})
}

func (h *HealthHandler) probe(ctx context.Context) (map[string]string, bool) {
	statuses := make(map[string]string, len(h.deps))
	ready := true
	for _, dep := range h.deps {
		if dep.pinger == nil {
			statuses[dep.name] = "disabled"
			continue
		}
		if err := dep.pinger.Ping(ctx); err != nil {
			statuses[dep.name] = err.Error()
			ready = false
			continue
		}
		statuses[dep.name] = "ok"
	}
	return statuses, ready
}
