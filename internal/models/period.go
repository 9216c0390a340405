package models

import (
	"time"

	"estudio/internal/recategorization"

	"github.com/shopspring/decimal"
)

// Period is a fiscal recategorization period. Sales and purchases are summed
// over [SalesFrom, SalesTo]; the resulting fee applies over [FeeFrom, FeeTo].
type Period struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	Code       string         `gorm:"uniqueIndex;size:32;not null" json:"code"`
	SalesFrom  time.Time      `gorm:"type:date;not null" json:"sales_from"`
	SalesTo    time.Time      `gorm:"type:date;not null" json:"sales_to"`
	FeeFrom    time.Time      `gorm:"type:date;not null" json:"fee_from"`
	FeeTo      time.Time      `gorm:"type:date;not null" json:"fee_to"`
	Active     bool           `gorm:"default:false;index" json:"active"`
	Scales     []ScaleRow     `gorm:"foreignKey:PeriodID;constraint:OnDelete:CASCADE" json:"scales,omitempty"`
	Components []FeeComponent `gorm:"foreignKey:PeriodID;constraint:OnDelete:CASCADE" json:"components,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// ScaleRow is one category's maxima within a period. A NULL column is an
// uncapped dimension.
type ScaleRow struct {
	ID           uint                `gorm:"primarykey" json:"-"`
	PeriodID     uint                `gorm:"uniqueIndex:idx_scale_period_category;not null" json:"-"`
	Category     string              `gorm:"uniqueIndex:idx_scale_period_category;size:4;not null" json:"category"`
	MaxIncome    decimal.NullDecimal `gorm:"type:numeric(16,2)" json:"max_income"`
	MaxArea      decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"max_area"`
	MaxPower     decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"max_power"`
	MaxRent      decimal.NullDecimal `gorm:"type:numeric(16,2)" json:"max_rent"`
	MaxUnitPrice decimal.NullDecimal `gorm:"type:numeric(16,2)" json:"max_unit_price"`
}

// Engine converts the row into the value the classifier works on.
func (r ScaleRow) Engine() recategorization.ScaleRow {
	return recategorization.ScaleRow{
		Category:     recategorization.Category(r.Category).Normalize(),
		MaxIncome:    r.MaxIncome,
		MaxArea:      r.MaxArea,
		MaxPower:     r.MaxPower,
		MaxRent:      r.MaxRent,
		MaxUnitPrice: r.MaxUnitPrice,
	}
}

// FeeComponent is one configured fee line of a category. Province is empty for
// national components.
type FeeComponent struct {
	ID                uint                `gorm:"primarykey" json:"-"`
	PeriodID          uint                `gorm:"uniqueIndex:idx_component_key;not null" json:"-"`
	Category          string              `gorm:"uniqueIndex:idx_component_key;size:4;not null" json:"category"`
	Type              string              `gorm:"uniqueIndex:idx_component_key;size:16;not null" json:"type"`
	Province          string              `gorm:"uniqueIndex:idx_component_key;size:8;not null;default:''" json:"province,omitempty"`
	Value             decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"value"`
	HasMunicipal      bool                `gorm:"default:false" json:"has_municipal"`
	HasIntegratedIIBB bool                `gorm:"column:has_integrated_iibb;default:false" json:"has_integrated_iibb"`
}

// Engine converts the row into the value the composer works on.
func (c FeeComponent) Engine() recategorization.FeeComponent {
	return recategorization.FeeComponent{
		Category:          recategorization.Category(c.Category).Normalize(),
		Type:              recategorization.ComponentType(c.Type),
		Province:          c.Province,
		Value:             c.Value,
		HasMunicipal:      c.HasMunicipal,
		HasIntegratedIIBB: c.HasIntegratedIIBB,
	}
}

// EngineScales converts persisted rows for the classifier.
func EngineScales(rows []ScaleRow) []recategorization.ScaleRow {
	out := make([]recategorization.ScaleRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Engine())
	}
	return out
}

// EngineComponents converts persisted rows for the composer.
func EngineComponents(rows []FeeComponent) []recategorization.FeeComponent {
	out := make([]recategorization.FeeComponent, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Engine())
	}
	return out
}
