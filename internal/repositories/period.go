package repositories

import (
	"context"
	"errors"
	"fmt"

	"estudio/internal/models"
	"estudio/internal/recategorization"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrPeriodNotFound matches recategorization.ErrUnknownPeriod so that the
	// engine reports a missing period as a configuration error.
	ErrPeriodNotFound  = fmt.Errorf("period not found: %w", recategorization.ErrUnknownPeriod)
	ErrDuplicatePeriod = errors.New("period code already exists")
)

// PeriodRepository defines the interface for period table operations
type PeriodRepository interface {
	GetByCode(ctx context.Context, code string) (*models.Period, error)
	GetActive(ctx context.Context) (*models.Period, error)
	List(ctx context.Context) ([]models.Period, error)
	Create(ctx context.Context, period *models.Period) error
	Update(ctx context.Context, period *models.Period) error
	Activate(ctx context.Context, code string) (*models.Period, error)
	ReplaceScales(ctx context.Context, code string, rows []models.ScaleRow) error
	ReplaceComponents(ctx context.Context, code string, rows []models.FeeComponent) error

	// recategorization.Tables
	ScaleTable(ctx context.Context, code string) ([]recategorization.ScaleRow, error)
	FeeTable(ctx context.Context, code string) ([]recategorization.FeeComponent, error)
}

type periodRepository struct {
	db *gorm.DB
}

func NewPeriodRepository(db *gorm.DB) PeriodRepository {
	return &periodRepository{db: db}
}

func (r *periodRepository) GetByCode(ctx context.Context, code string) (*models.Period, error) {
	return findPeriod(r.db.WithContext(ctx), code)
}

func findPeriod(tx *gorm.DB, code string) (*models.Period, error) {
	var period models.Period
	if err := tx.Where("code = ?", code).First(&period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPeriodNotFound, code)
		}
		return nil, fmt.Errorf("failed to get period: %w", err)
	}
	return &period, nil
}

func (r *periodRepository) GetActive(ctx context.Context) (*models.Period, error) {
	var period models.Period
	if err := r.db.WithContext(ctx).Where("active = ?", true).First(&period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no active period", ErrPeriodNotFound)
		}
		return nil, fmt.Errorf("failed to get active period: %w", err)
	}
	return &period, nil
}

func (r *periodRepository) List(ctx context.Context) ([]models.Period, error) {
	var periods []models.Period
	if err := r.db.WithContext(ctx).Order("sales_from DESC").Find(&periods).Error; err != nil {
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	return periods, nil
}

func (r *periodRepository) Create(ctx context.Context, period *models.Period) error {
	// Activation goes through Activate so the single-active rule holds.
	period.Active = false
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(period).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicatePeriod
		}
		return fmt.Errorf("failed to create period: %w", err)
	}
	return nil
}

func (r *periodRepository) Update(ctx context.Context, period *models.Period) error {
	result := r.db.WithContext(ctx).
		Model(&models.Period{}).
		Where("id = ?", period.ID).
		Updates(map[string]interface{}{
			"code":       period.Code,
			"sales_from": period.SalesFrom,
			"sales_to":   period.SalesTo,
			"fee_from":   period.FeeFrom,
			"fee_to":     period.FeeTo,
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicatePeriod
		}
		return fmt.Errorf("failed to update period: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPeriodNotFound
	}
	return nil
}

// Activate marks code as the only active period, in one transaction.
func (r *periodRepository) Activate(ctx context.Context, code string) (*models.Period, error) {
	var activated *models.Period
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		period, err := findPeriod(tx.Clauses(clause.Locking{Strength: "UPDATE"}), code)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.Period{}).
			Where("active = ? AND id <> ?", true, period.ID).
			Update("active", false).Error; err != nil {
			return fmt.Errorf("failed to deactivate periods: %w", err)
		}
		if err := tx.Model(period).Update("active", true).Error; err != nil {
			return fmt.Errorf("failed to activate period: %w", err)
		}
		period.Active = true
		activated = period
		return nil
	})
	if err != nil {
		return nil, err
	}
	return activated, nil
}

func (r *periodRepository) ReplaceScales(ctx context.Context, code string, rows []models.ScaleRow) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		period, err := findPeriod(tx, code)
		if err != nil {
			return err
		}
		if err := tx.Where("period_id = ?", period.ID).Delete(&models.ScaleRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear scale table: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		for i := range rows {
			rows[i].ID = 0
			rows[i].PeriodID = period.ID
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to store scale table: %w", err)
		}
		return nil
	})
}

func (r *periodRepository) ReplaceComponents(ctx context.Context, code string, rows []models.FeeComponent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		period, err := findPeriod(tx, code)
		if err != nil {
			return err
		}
		if err := tx.Where("period_id = ?", period.ID).Delete(&models.FeeComponent{}).Error; err != nil {
			return fmt.Errorf("failed to clear fee table: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		for i := range rows {
			rows[i].ID = 0
			rows[i].PeriodID = period.ID
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to store fee table: %w", err)
		}
		return nil
	})
}

func (r *periodRepository) ScaleTable(ctx context.Context, code string) ([]recategorization.ScaleRow, error) {
	var rows []models.ScaleRow
	err := r.db.WithContext(ctx).
		Joins("JOIN periods ON periods.id = scale_rows.period_id").
		Where("periods.code = ?", code).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load scale table: %w", err)
	}
	if len(rows) == 0 {
		// Tell an empty table apart from an unknown period.
		if _, err := r.GetByCode(ctx, code); err != nil {
			return nil, err
		}
	}
	return models.EngineScales(rows), nil
}

func (r *periodRepository) FeeTable(ctx context.Context, code string) ([]recategorization.FeeComponent, error) {
	var rows []models.FeeComponent
	err := r.db.WithContext(ctx).
		Joins("JOIN periods ON periods.id = fee_components.period_id").
		Where("periods.code = ?", code).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load fee table: %w", err)
	}
	if len(rows) == 0 {
		if _, err := r.GetByCode(ctx, code); err != nil {
			return nil, err
		}
	}
	return models.EngineComponents(rows), nil
}
