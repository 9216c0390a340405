package recategorization

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Tables loads a period's configuration. Implementations return
// ErrUnknownPeriod (possibly wrapped) when the period does not exist and an
// empty slice when it exists without rows.
type Tables interface {
	ScaleTable(ctx context.Context, period string) ([]ScaleRow, error)
	FeeTable(ctx context.Context, period string) ([]FeeComponent, error)
}

// Engine composes the classifier and the composer.
type Engine struct {
	tables     Tables
	classifier *Classifier
	composer   *Composer
	config     Config
}

// NewEngine creates a new recategorization engine
func NewEngine(tables Tables, config Config) *Engine {
	if tables == nil {
		panic("tables source is required")
	}
	config = config.withDefaults()

	return &Engine{
		tables:     tables,
		classifier: NewClassifier(config),
		composer:   NewComposer(config),
		config:     config,
	}
}

// Recategorize classifies one client for period and composes its fee.
func (e *Engine) Recategorize(ctx context.Context, period string, m ClientMetrics) (*Result, error) {
	return e.recategorize(ctx, e.tables, period, m)
}

func (e *Engine) recategorize(ctx context.Context, tables Tables, period string, m ClientMetrics) (*Result, error) {
	if err := ValidateMetrics(m); err != nil {
		return nil, err
	}

	scales, err := tables.ScaleTable(ctx, period)
	if err != nil {
		return nil, loadError(period, "scale table", err)
	}
	components, err := tables.FeeTable(ctx, period)
	if err != nil {
		return nil, loadError(period, "fee table", err)
	}

	return e.Evaluate(period, m, scales, components)
}

// Evaluate runs the classifier and the composer on tables the caller already
// holds. It is deterministic: the same inputs always give the same result.
func (e *Engine) Evaluate(period string, m ClientMetrics, scales []ScaleRow, components []FeeComponent) (*Result, error) {
	if err := ValidateMetrics(m); err != nil {
		return nil, err
	}

	class, err := e.classifier.Classify(m, scales)
	if err != nil {
		return nil, withPeriod(err, period)
	}

	res := &Result{
		ClientID:         m.ClientID,
		Period:           period,
		BillableIncome:   class.Billable,
		PreviousCategory: m.PreviousCategory.Normalize(),
		PreviousFee:      m.PreviousFee,
	}

	if class.OutOfRange != nil {
		res.OutOfRange = class.OutOfRange
		res.Change = ChangeOutOfRange
		return res, nil
	}

	fee, err := e.composer.Compose(class.Category, m, components)
	if err != nil {
		return nil, withPeriod(err, period)
	}

	res.Category = class.Category
	res.Fee = fee
	res.Review = fee.Review
	res.Change = changeOf(res.PreviousCategory, res.Category, false)
	if m.PreviousFee.Valid {
		res.FeeDelta = decimal.NewNullDecimal(fee.Total.Sub(m.PreviousFee.Decimal))
	}
	return res, nil
}

func loadError(period, what string, err error) error {
	if errors.Is(err, ErrUnknownPeriod) {
		return &ConfigError{Period: period, Kind: KindMissingPeriod, Detail: err.Error()}
	}
	return fmt.Errorf("failed to load %s for period %s: %w", what, period, err)
}
