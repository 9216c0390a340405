// Package routes defines the API routing configuration.
// It wires repositories, services and handlers and sets up every HTTP route
// with its middleware and permission requirements.
package routes

import (
	"context"
	"fmt"
	"time"

	"estudio/internal/config"
	"estudio/internal/handlers"
	"estudio/internal/middleware"
	"estudio/internal/models"
	"estudio/internal/recategorization"
	"estudio/internal/repositories"
	"estudio/internal/repositories/cache"
	"estudio/internal/services/period"
	recatService "estudio/internal/services/recategorization"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

// Handlers groups the HTTP handlers served by the portal.
type Handlers struct {
	Recategorization *handlers.RecategorizationHandler
	Period           *handlers.PeriodHandler
	Health           *handlers.HealthHandler
}

// SetupRoutes builds the portal's dependencies on top of db and cacheService
// and registers every route. It returns the cached period tables so the
// caller can schedule their warm-up.
func SetupRoutes(app *fiber.App, db *gorm.DB, cacheService *cache.CacheService) *repositories.CachedTables {
	periodRepo := repositories.NewPeriodRepository(db)
	clientRepo := repositories.NewClientRepository(db)

	var tableCache repositories.TableCache
	if cacheService != nil {
		tableCache = cacheService
	}
	tables := repositories.NewCachedTables(periodRepo, tableCache)

	engineConfig := config.EngineConfig()
	engine := recategorization.NewEngine(tables, engineConfig)

	var invalidator period.Invalidator = noopInvalidator{}
	if cacheService != nil {
		invalidator = cacheService
	}

	checks := map[string]handlers.Check{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if cacheService != nil {
		checks["redis"] = cacheService.HealthCheck
	}

	h := Handlers{
		Recategorization: handlers.NewRecategorizationHandler(
			recatService.NewService(engine, periodRepo, clientRepo, engineConfig.BatchWorkers),
		),
		Period: handlers.NewPeriodHandler(period.NewService(periodRepo, invalidator)),
		Health: handlers.NewHealthHandler(checks, cacheService),
	}

	secret := config.GetEnv("JWT_SECRET", "")
	if secret == "" && !config.IsProduction() {
		secret = "estudio-dev-secret"
	}
	Register(app, h, middleware.NewAuthMiddleware(secret))
	return tables
}

// Register mounts the routes on app.
func Register(app *fiber.App, h Handlers, auth *middleware.AuthMiddleware) {
	app.Get("/health", h.Health.HealthCheck)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to Estudio API",
			"version": "1.0.0",
			"docs":    "/api",
		})
	})

	api := app.Group("/api", auth.Handler)

	setupPeriodRoutes(api, h.Period)
	setupRecategorizationRoutes(api, h.Recategorization)
	setupAdminRoutes(api, h.Period, h.Health)
}

func setupPeriodRoutes(router fiber.Router, h *handlers.PeriodHandler) {
	read := middleware.HasPermission(models.PermissionPeriodRead)
	router.Get("/periods", read, h.List)
	router.Get("/periods/active", read, h.Active)
}

func setupRecategorizationRoutes(router fiber.Router, h *handlers.RecategorizationHandler) {
	read := middleware.HasPermission(models.PermissionRecategorizationRead)
	run := middleware.HasPermission(models.PermissionRecategorizationRun)

	router.Get("/periods/:periodId/clients/:clientId/recategorization", read, h.Report)
	router.Get("/periods/:periodId/recategorizations", read, h.Listing)
	router.Post("/periods/:periodId/recategorizations", run, batchLimiter(), h.Batch)
}

func setupAdminRoutes(router fiber.Router, h *handlers.PeriodHandler, health *handlers.HealthHandler) {
	admin := router.Group("/admin", middleware.AdminAuthMiddleware)

	admin.Get("/periods", middleware.HasPermission(models.PermissionReadAdmin), h.List)
	admin.Get("/periods/:id", middleware.HasPermission(models.PermissionReadAdmin), h.Get)
	admin.Post("/periods", middleware.HasPermission(models.PermissionPeriodWrite), h.Create)
	admin.Put("/periods/:id", middleware.HasPermission(models.PermissionPeriodWrite), h.Update)
	admin.Post("/periods/:id/activate", middleware.HasPermission(models.PermissionPeriodWrite), h.Activate)
	admin.Put("/periods/:id/scales", middleware.HasPermission(models.PermissionPeriodWrite), h.ReplaceScales)
	admin.Put("/periods/:id/components", middleware.HasPermission(models.PermissionPeriodWrite), h.ReplaceComponents)

	admin.Get("/cache/stats", middleware.HasPermission(models.PermissionReadAdmin), health.CacheStats)
}

// batchLimiter bounds batch runs per studio member.
func batchLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.GetIntEnv("RECAT_BATCH_RATE", 10),
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			if claims, ok := c.Locals("claims").(*models.StudioClaims); ok {
				return fmt.Sprintf("batch:%d", claims.UserID)
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	})
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidatePeriod(context.Context, string) error { return nil }
