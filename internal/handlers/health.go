package handlers

import (
	"context"
	"time"

	"estudio/internal/repositories/cache"

	"github.com/gofiber/fiber/v2"
)

// Check pings one dependency.
type Check func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]Check
	cache  *cache.CacheService
}

// NewHealthHandler reports on the named checks. cacheService may be nil when
// the period cache is disabled.
func NewHealthHandler(checks map[string]Check, cacheService *cache.CacheService) *HealthHandler {
	return &HealthHandler{checks: checks, cache: cacheService}
}

func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := "ok"
	services := fiber.Map{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			services[name] = "unavailable"
			status = "degraded"
			continue
		}
		services[name] = "connected"
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"version":  "1.0.0",
		"services": services,
	})
}

func (h *HealthHandler) CacheStats(c *fiber.Ctx) error {
	if h.cache == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "cache disabled"})
	}

	poolStats := h.cache.PoolStats()
	return c.JSON(fiber.Map{
		"cache_stats": h.cache.Stats(),
		"pool_stats": fiber.Map{
			"hits":        poolStats.Hits,
			"misses":      poolStats.Misses,
			"timeouts":    poolStats.Timeouts,
			"total_conns": poolStats.TotalConns,
			"idle_conns":  poolStats.IdleConns,
			"stale_conns": poolStats.StaleConns,
		},
	})
}
