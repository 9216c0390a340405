// Package period administers the shared period tables: periods, their scale
// tables and fee tables. Every write invalidates the period's cached tables.
package period

import (
	"context"
	"fmt"
	"log"
	"strings"

	"estudio/internal/models"
	"estudio/internal/recategorization"
	"estudio/internal/repositories"
	"estudio/internal/validation"

	"github.com/shopspring/decimal"
)

// Service defines the period administration interface
type Service interface {
	Get(ctx context.Context, code string) (*models.Period, error)
	List(ctx context.Context) ([]models.Period, error)
	Create(ctx context.Context, in Input) (*models.Period, error)
	Update(ctx context.Context, code string, in Input) (*models.Period, error)
	Activate(ctx context.Context, code string) (*models.Period, error)
	ReplaceScales(ctx context.Context, code string, rows []ScaleInput) error
	ReplaceComponents(ctx context.Context, code string, rows []ComponentInput) error

	// ActivePeriod returns the period flagged active. It is the only reader
	// of the flag; recategorization itself always takes an explicit period.
	ActivePeriod(ctx context.Context) (*models.Period, error)
}

// Invalidator drops cached tables of a period.
type Invalidator interface {
	InvalidatePeriod(ctx context.Context, code string) error
}

type service struct {
	repo  repositories.PeriodRepository
	cache Invalidator
}

// NewService creates a new period service
func NewService(repo repositories.PeriodRepository, cache Invalidator) Service {
	if repo == nil {
		panic("repo is required")
	}
	if cache == nil {
		panic("cache is required")
	}
	return &service{repo: repo, cache: cache}
}

func (s *service) Get(ctx context.Context, code string) (*models.Period, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *service) List(ctx context.Context) ([]models.Period, error) {
	return s.repo.List(ctx)
}

func (s *service) ActivePeriod(ctx context.Context) (*models.Period, error) {
	return s.repo.GetActive(ctx)
}

func (s *service) Create(ctx context.Context, in Input) (*models.Period, error) {
	period, err := in.toModel()
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, period); err != nil {
		return nil, err
	}
	log.Printf("✅ Period %s created", period.Code)
	return period, nil
}

func (s *service) Update(ctx context.Context, code string, in Input) (*models.Period, error) {
	current, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	updated, err := in.toModel()
	if err != nil {
		return nil, err
	}
	updated.ID = current.ID
	updated.Active = current.Active
	updated.CreatedAt = current.CreatedAt

	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}

	s.invalidate(ctx, code)
	if updated.Code != code {
		s.invalidate(ctx, updated.Code)
	}
	return updated, nil
}

func (s *service) Activate(ctx context.Context, code string) (*models.Period, error) {
	period, err := s.repo.Activate(ctx, code)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, code)
	log.Printf("✅ Period %s is now active", code)
	return period, nil
}

// ReplaceScales swaps the whole scale table of a period. The table must pass
// the same checks the classifier runs, so a broken table is never stored.
func (s *service) ReplaceScales(ctx context.Context, code string, rows []ScaleInput) error {
	v := validation.New()
	v.Check(len(rows) > 0, "scales", "must contain at least one category")

	records := make([]models.ScaleRow, 0, len(rows))
	for i, r := range rows {
		field := fmt.Sprintf("scales[%d]", i)
		category := strings.ToUpper(strings.TrimSpace(r.Category))
		v.Required(field+".category", category)
		v.MaxLength(field+".category", category, validation.MaxCategoryLength)
		for name, limit := range map[string]decimal.NullDecimal{
			"max_income":     r.MaxIncome,
			"max_area":       r.MaxArea,
			"max_power":      r.MaxPower,
			"max_rent":       r.MaxRent,
			"max_unit_price": r.MaxUnitPrice,
		} {
			if limit.Valid {
				v.NonNegative(field+"."+name, limit.Decimal)
			}
		}

		records = append(records, models.ScaleRow{
			Category:     category,
			MaxIncome:    r.MaxIncome,
			MaxArea:      r.MaxArea,
			MaxPower:     r.MaxPower,
			MaxRent:      r.MaxRent,
			MaxUnitPrice: r.MaxUnitPrice,
		})
	}
	if err := v.Err(); err != nil {
		return err
	}

	if err := recategorization.ValidateScale(models.EngineScales(records)); err != nil {
		return err
	}

	if err := s.repo.ReplaceScales(ctx, code, records); err != nil {
		return err
	}
	s.invalidate(ctx, code)
	log.Printf("✅ Scale table of period %s replaced (%d categories)", code, len(records))
	return nil
}

// ReplaceComponents swaps the whole fee table of a period.
func (s *service) ReplaceComponents(ctx context.Context, code string, rows []ComponentInput) error {
	v := validation.New()
	allowed := make([]string, 0, len(recategorization.ComponentTypes))
	for _, t := range recategorization.ComponentTypes {
		allowed = append(allowed, string(t))
	}

	records := make([]models.FeeComponent, 0, len(rows))
	for i, r := range rows {
		field := fmt.Sprintf("components[%d]", i)
		category := strings.ToUpper(strings.TrimSpace(r.Category))
		province := strings.ToUpper(strings.TrimSpace(r.Province))

		v.Required(field+".category", category)
		v.MaxLength(field+".category", category, validation.MaxCategoryLength)
		v.OneOf(field+".type", r.Type, allowed...)
		v.MaxLength(field+".province", province, validation.MaxProvinceLength)
		if r.Type == string(recategorization.ComponentGrossReceipts) {
			v.Required(field+".province", province)
		} else {
			v.Check(province == "", field+".province", "only gross_receipts components are provincial")
		}
		if r.Value.Valid {
			v.NonNegative(field+".value", r.Value.Decimal)
		}

		records = append(records, models.FeeComponent{
			Category:          category,
			Type:              r.Type,
			Province:          province,
			Value:             r.Value,
			HasMunicipal:      r.HasMunicipal,
			HasIntegratedIIBB: r.HasIntegratedIIBB,
		})
	}
	if err := v.Err(); err != nil {
		return err
	}

	if err := recategorization.ValidateFeeTable(models.EngineComponents(records)); err != nil {
		return err
	}

	if err := s.repo.ReplaceComponents(ctx, code, records); err != nil {
		return err
	}
	s.invalidate(ctx, code)
	log.Printf("✅ Fee table of period %s replaced (%d components)", code, len(records))
	return nil
}

// invalidate never fails the edit: the TTL bounds how stale a missed
// invalidation can leave the cache.
func (s *service) invalidate(ctx context.Context, code string) {
	if err := s.cache.InvalidatePeriod(ctx, code); err != nil {
		log.Printf("⚠️ Failed to invalidate cached tables of period %s: %v", code, err)
	}
}
