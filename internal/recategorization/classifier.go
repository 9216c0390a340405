package recategorization

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// Classifier maps a client's metrics onto a period's scale table.
type Classifier struct {
	dualLeasingFloor Category
}

// NewClassifier creates a classifier using the policy constants in cfg.
func NewClassifier(cfg Config) *Classifier {
	cfg = cfg.withDefaults()
	return &Classifier{dualLeasingFloor: cfg.DualLeasingFloor}
}

// Classify returns the lowest category whose caps all admit the client, or an
// out-of-range classification when no category does. Caps are inclusive.
func (c *Classifier) Classify(m ClientMetrics, scales []ScaleRow) (Classification, error) {
	rows, err := orderedScales(scales)
	if err != nil {
		return Classification{}, err
	}

	billable, unitPrice, err := billableFor(m)
	if err != nil {
		return Classification{}, err
	}

	var floor Category
	switch m.Activity {
	case ActivityDualLeasing:
		floor = c.dualLeasingFloor
		if !slices.ContainsFunc(rows, func(r ScaleRow) bool { return r.Category.Compare(floor) == 0 }) {
			return Classification{}, &ConfigError{
				Kind:     KindInvalidScale,
				Category: floor,
				Detail:   "dual leasing floor category is not in the scale table",
			}
		}
	}

	top := rows[len(rows)-1]
	if !withinCap(top.MaxIncome, billable) {
		return Classification{
			Billable: billable,
			OutOfRange: &OutOfRange{
				Dimension: DimensionIncome,
				Value:     billable,
				Limit:     top.MaxIncome.Decimal,
			},
		}, nil
	}

	var blocked *OutOfRange
	for _, row := range rows {
		if !floor.IsZero() && row.Category.Compare(floor) < 0 {
			continue
		}
		if blocked = exceeded(row, m, billable, unitPrice); blocked != nil {
			continue
		}
		return Classification{Category: row.Category, Billable: billable}, nil
	}

	// blocked now holds the top category's exceeded dimension.
	return Classification{Billable: billable, OutOfRange: blocked}, nil
}

// billableFor picks the quantity compared against the income caps. For goods
// resale it also derives the average unit price when a unit count is known.
func billableFor(m ClientMetrics) (decimal.Decimal, decimal.NullDecimal, error) {
	switch m.Activity {
	case ActivityGoods:
		billable := decimal.Max(m.Sales, m.Purchases)
		if m.UnitsSold > 0 {
			price := m.Sales.Div(decimal.NewFromInt(int64(m.UnitsSold)))
			return billable, decimal.NewNullDecimal(price), nil
		}
		return billable, decimal.NullDecimal{}, nil
	case ActivityServices, ActivityLeasing, ActivityDualLeasing:
		return m.Sales, decimal.NullDecimal{}, nil
	default:
		return decimal.Zero, decimal.NullDecimal{}, &InputError{
			ClientID: m.ClientID,
			Fields:   map[string]string{"activity": fmt.Sprintf("unknown activity %q", m.Activity)},
		}
	}
}

// exceeded returns the first dimension of row that the client does not fit in.
func exceeded(row ScaleRow, m ClientMetrics, billable decimal.Decimal, unitPrice decimal.NullDecimal) *OutOfRange {
	if !withinCap(row.MaxIncome, billable) {
		return &OutOfRange{Dimension: DimensionIncome, Value: billable, Limit: row.MaxIncome.Decimal}
	}
	if unitPrice.Valid && !withinCap(row.MaxUnitPrice, unitPrice.Decimal) {
		return &OutOfRange{Dimension: DimensionUnitPrice, Value: unitPrice.Decimal, Limit: row.MaxUnitPrice.Decimal}
	}
	if !m.HasPremises {
		return nil
	}

	checks := []struct {
		dim   Dimension
		limit decimal.NullDecimal
		value decimal.Decimal
	}{
		{DimensionArea, row.MaxArea, m.Area},
		{DimensionRent, row.MaxRent, m.Rent},
		{DimensionPower, row.MaxPower, m.Power},
	}
	for _, chk := range checks {
		if !withinCap(chk.limit, chk.value) {
			return &OutOfRange{Dimension: chk.dim, Value: chk.value, Limit: chk.limit.Decimal}
		}
	}
	return nil
}

func withinCap(limit decimal.NullDecimal, value decimal.Decimal) bool {
	return !limit.Valid || value.LessThanOrEqual(limit.Decimal)
}

// orderedScales returns a copy of scales sorted by category after checking
// that the table is usable: non-empty, no blank or duplicate categories and
// maxima that never decrease as the category increases.
func orderedScales(scales []ScaleRow) ([]ScaleRow, error) {
	if len(scales) == 0 {
		return nil, &ConfigError{Kind: KindMissingScale, Detail: "scale table is empty"}
	}

	rows := slices.Clone(scales)
	for i := range rows {
		if rows[i].Category.IsZero() {
			return nil, &ConfigError{Kind: KindInvalidScale, Detail: "scale row without category"}
		}
		rows[i].Category = rows[i].Category.Normalize()
	}
	slices.SortStableFunc(rows, func(a, b ScaleRow) int { return a.Category.Compare(b.Category) })

	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1], rows[i]
		if prev.Category.Compare(cur.Category) == 0 {
			return nil, &ConfigError{Kind: KindInvalidScale, Category: cur.Category, Detail: "duplicate category"}
		}

		dims := []struct {
			name      Dimension
			prev, cur decimal.NullDecimal
		}{
			{DimensionIncome, prev.MaxIncome, cur.MaxIncome},
			{DimensionArea, prev.MaxArea, cur.MaxArea},
			{DimensionPower, prev.MaxPower, cur.MaxPower},
			{DimensionRent, prev.MaxRent, cur.MaxRent},
			{DimensionUnitPrice, prev.MaxUnitPrice, cur.MaxUnitPrice},
		}
		for _, d := range dims {
			if !nonDecreasing(d.prev, d.cur) {
				return nil, &ConfigError{
					Kind:     KindInvalidScale,
					Category: cur.Category,
					Detail:   fmt.Sprintf("%s maximum is lower than category %s", d.name, prev.Category),
				}
			}
		}
	}
	return rows, nil
}

// nonDecreasing treats a null cap as unbounded: an uncapped category may only
// be followed by uncapped ones.
func nonDecreasing(prev, cur decimal.NullDecimal) bool {
	switch {
	case !cur.Valid:
		return true
	case !prev.Valid:
		return false
	default:
		return cur.Decimal.GreaterThanOrEqual(prev.Decimal)
	}
}

// ValidateScale reports whether scales could be used by Classify.
func ValidateScale(scales []ScaleRow) error {
	_, err := orderedScales(scales)
	return err
}
