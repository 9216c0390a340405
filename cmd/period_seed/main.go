package main

import (
	"context"
	"log"

	"estudio/internal/config"
	"estudio/internal/repositories"
	"estudio/internal/seed"
	"estudio/internal/services/period"
)

func main() {
	config.LoadEnv()

	path := config.GetEnv("PERIOD_FIXTURE", "")
	if path == "" {
		log.Fatal("PERIOD_FIXTURE must be set in environment")
	}
	activate := config.GetEnv("PERIOD_ACTIVATE", "false") == "true"

	fixture, err := seed.LoadPeriod(path)
	if err != nil {
		log.Fatalf("Failed to load fixture: %v", err)
	}

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer repositories.Close()

	var invalidator period.Invalidator = noopInvalidator{}
	if repositories.CacheService != nil {
		invalidator = repositories.CacheService
	}
	svc := period.NewService(repositories.NewPeriodRepository(repositories.DB), invalidator)

	if err := seed.Apply(context.Background(), svc, fixture, activate); err != nil {
		log.Fatalf("Failed to seed period %s: %v", fixture.Period.Code, err)
	}

	log.Printf("✅ Period %s seeded successfully!", fixture.Period.Code)
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidatePeriod(context.Context, string) error { return nil }
