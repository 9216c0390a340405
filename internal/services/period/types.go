package period

import (
	"time"

	"estudio/internal/models"
	"estudio/internal/validation"

	"github.com/shopspring/decimal"
)

// Input is the body of the create and update period requests. Dates use the
// YYYY-MM-DD layout.
type Input struct {
	Code      string `json:"code"`
	SalesFrom string `json:"sales_from"`
	SalesTo   string `json:"sales_to"`
	FeeFrom   string `json:"fee_from"`
	FeeTo     string `json:"fee_to"`
}

// ScaleInput is one row of a scale table replacement.
type ScaleInput struct {
	Category     string              `json:"category"`
	MaxIncome    decimal.NullDecimal `json:"max_income"`
	MaxArea      decimal.NullDecimal `json:"max_area"`
	MaxPower     decimal.NullDecimal `json:"max_power"`
	MaxRent      decimal.NullDecimal `json:"max_rent"`
	MaxUnitPrice decimal.NullDecimal `json:"max_unit_price"`
}

// ComponentInput is one row of a fee table replacement.
type ComponentInput struct {
	Category          string              `json:"category"`
	Type              string              `json:"type"`
	Province          string              `json:"province"`
	Value             decimal.NullDecimal `json:"value"`
	HasMunicipal      bool                `json:"has_municipal"`
	HasIntegratedIIBB bool                `json:"has_integrated_iibb"`
}

// toModel validates the input and converts it. Field errors are reported
// together as a *validation.Error.
func (in Input) toModel() (*models.Period, error) {
	v := validation.New()
	v.Required("code", in.Code)
	v.MaxLength("code", in.Code, validation.MaxPeriodCodeLength)

	salesFrom := parseDate(v, "sales_from", in.SalesFrom)
	salesTo := parseDate(v, "sales_to", in.SalesTo)
	feeFrom := parseDate(v, "fee_from", in.FeeFrom)
	feeTo := parseDate(v, "fee_to", in.FeeTo)

	if v.Valid() {
		v.DateRange("sales_to", salesFrom, salesTo)
		v.DateRange("fee_to", feeFrom, feeTo)
		v.Check(salesTo.Before(feeFrom), "fee_from", "must start after the observation window ends")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	return &models.Period{
		Code:      in.Code,
		SalesFrom: salesFrom,
		SalesTo:   salesTo,
		FeeFrom:   feeFrom,
		FeeTo:     feeTo,
	}, nil
}

func parseDate(v *validation.Validator, field, value string) time.Time {
	if value == "" {
		v.AddError(field, "must not be empty")
		return time.Time{}
	}
	t, err := time.Parse(validation.DateLayout, value)
	if err != nil {
		v.AddError(field, "must be a date in YYYY-MM-DD format")
	}
	return t
}
