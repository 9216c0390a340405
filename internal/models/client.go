package models

import (
	"strconv"
	"time"

	"estudio/internal/recategorization"

	"github.com/shopspring/decimal"
)

// Client is a studio's client. It lives in the studio's tenant schema.
type Client struct {
	ID                  uint                `gorm:"primarykey" json:"id"`
	Name                string              `gorm:"size:160;not null" json:"name"`
	TaxID               string              `gorm:"uniqueIndex;size:16;not null" json:"tax_id"`
	Activity            string              `gorm:"size:16;not null" json:"activity"`
	Province            string              `gorm:"size:8;not null" json:"province"`
	SpecialRegimeWorker bool                `gorm:"default:false" json:"special_regime_worker"`
	Retired             bool                `gorm:"default:false" json:"retired"`
	Exempt              bool                `gorm:"default:false" json:"exempt"`
	Multilateral        bool                `gorm:"default:false" json:"multilateral"`
	HasPremises         bool                `gorm:"default:false" json:"has_premises"`
	PremisesRented      bool                `gorm:"default:false" json:"premises_rented"`
	Dependents          int                 `gorm:"default:0" json:"dependents"`
	Area                decimal.Decimal     `gorm:"type:numeric(10,2);default:0" json:"area"`
	Rent                decimal.Decimal     `gorm:"type:numeric(16,2);default:0" json:"rent"`
	Power               decimal.Decimal     `gorm:"type:numeric(12,2);default:0" json:"power"`
	UnitsSold           int                 `gorm:"default:0" json:"units_sold"`
	PreviousCategory    string              `gorm:"size:4" json:"previous_category,omitempty"`
	PreviousFee         decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"previous_fee"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// Movement kinds
const (
	MovementSale     = "sale"
	MovementPurchase = "purchase"
)

// Movement is one invoiced sale or purchase of a client.
type Movement struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	ClientID  uint            `gorm:"index:idx_movement_client_date;not null" json:"client_id"`
	Kind      string          `gorm:"size:8;not null" json:"kind"`
	Amount    decimal.Decimal `gorm:"type:numeric(16,2);not null" json:"amount"`
	Date      time.Time       `gorm:"index:idx_movement_client_date;type:date;not null" json:"date"`
	CreatedAt time.Time       `json:"created_at"`
}

// ClientKey formats a client ID the way the engine identifies clients.
func ClientKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// Metrics builds the engine input from the client's attributes and the sums of
// its movements over a period's observation window.
func (c *Client) Metrics(sales, purchases decimal.Decimal) recategorization.ClientMetrics {
	return recategorization.ClientMetrics{
		ClientID:            ClientKey(c.ID),
		Activity:            recategorization.Activity(c.Activity),
		Province:            c.Province,
		SpecialRegimeWorker: c.SpecialRegimeWorker,
		Retired:             c.Retired,
		Exempt:              c.Exempt,
		Multilateral:        c.Multilateral,
		HasPremises:         c.HasPremises,
		PremisesRented:      c.PremisesRented,
		Dependents:          c.Dependents,
		Area:                c.Area,
		Rent:                c.Rent,
		Power:               c.Power,
		Sales:               sales,
		Purchases:           purchases,
		UnitsSold:           c.UnitsSold,
		PreviousCategory:    recategorization.Category(c.PreviousCategory),
		PreviousFee:         c.PreviousFee,
	}
}
