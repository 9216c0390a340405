// Package scheduler keeps the active period's tables warm in the cache so the
// first recategorizations after an expiry never pay the database round trip.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"estudio/internal/models"
	"estudio/internal/recategorization"

	"github.com/robfig/cron/v3"
)

// ActivePeriods resolves the active period.
type ActivePeriods interface {
	GetActive(ctx context.Context) (*models.Period, error)
}

// Warmer reloads a period's tables into the cache.
type Warmer interface {
	Warm(ctx context.Context, code string) error
}

// Scheduler runs the cache warm-up job.
type Scheduler struct {
	Cron    *cron.Cron
	Periods ActivePeriods
	Tables  Warmer
	Timeout time.Duration
	Ctx     context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, periods ActivePeriods, tables Warmer) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Periods: periods,
		Tables:  tables,
		Timeout: 30 * time.Second,
		Ctx:     ctx,
	}
}

// Register adds the warm-up job on spec, a six-field cron expression.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.warmTask); err != nil {
		return fmt.Errorf("register cache warm-up: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("✅ Scheduler started")
}

// Stop stops the cron scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("✅ Scheduler stopped")
}

// WarmNow loads the active period's tables into the cache. Having no active
// period is not an error.
func (s *Scheduler) WarmNow() error {
	ctx, cancel := context.WithTimeout(s.Ctx, s.Timeout)
	defer cancel()

	period, err := s.Periods.GetActive(ctx)
	if errors.Is(err, recategorization.ErrUnknownPeriod) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve active period: %w", err)
	}

	if err := s.Tables.Warm(ctx, period.Code); err != nil {
		return fmt.Errorf("warm period %s: %w", period.Code, err)
	}
	log.Printf("✅ Period %s tables cached", period.Code)
	return nil
}

func (s *Scheduler) warmTask() {
	if err := s.WarmNow(); err != nil {
		log.Printf("⚠️ Cache warm-up failed: %v", err)
	}
}
