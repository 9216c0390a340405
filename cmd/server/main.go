// Package main is the entry point for the portal API.
// It initializes the database and cache, wires the routes, schedules the
// period cache warm-up and starts the HTTP server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"estudio/internal/config"
	"estudio/internal/repositories"
	"estudio/internal/routes"
	"estudio/internal/scheduler"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	config.LoadEnv()

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer repositories.Close()

	sqlDB, err := repositories.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("✅ Successfully connected to database with connection pooling")

	// Periodic check of connection pool stats
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			stats := sqlDB.Stats()
			log.Printf("DB Stats: Open=%d, Idle=%d, InUse=%d, WaitCount=%d, WaitDuration=%s",
				stats.OpenConnections, stats.Idle, stats.InUse, stats.WaitCount, stats.WaitDuration)
		}
	}()

	if config.GetEnv("CACHE_FLUSH_ON_START", "false") == "true" && repositories.CacheService != nil {
		if err := repositories.CacheService.FlushAll(context.Background()); err != nil {
			log.Printf("⚠️ Failed to flush Redis cache: %v", err)
		} else {
			log.Println("✅ Redis cache flushed on startup")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:   "estudio",
		BodyLimit: 1 * 1024 * 1024,
	})

	app.Use(recover.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT",
		AllowCredentials: true,
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	tables := routes.SetupRoutes(app, repositories.DB, repositories.CacheService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(ctx, repositories.NewPeriodRepository(repositories.DB), tables)
	if spec := config.CacheWarmSchedule(); spec != "off" {
		if err := sched.Register(spec); err != nil {
			log.Fatalf("Failed to schedule cache warm-up: %v", err)
		}
		if err := sched.WarmNow(); err != nil {
			log.Printf("⚠️ Initial cache warm-up failed: %v", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("⚠️ Server shutdown failed: %v", err)
		}
	}()

	if err := app.Listen(":" + config.GetEnv("PORT", "3000")); err != nil {
		log.Printf("⚠️ Server stopped: %v", err)
	}
}
