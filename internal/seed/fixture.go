// Package seed loads YAML fixtures of period tables and clients, for seeding
// the database and for offline evaluation.
package seed

import (
	"context"
	"fmt"
	"os"

	"estudio/internal/models"
	"estudio/internal/recategorization"
	"estudio/internal/services/period"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Amount is a decimal fixture value. A missing or null value is an uncapped
// dimension or an unset component.
type Amount struct {
	decimal.NullDecimal
}

func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" || node.Value == "" {
		a.NullDecimal = decimal.NullDecimal{}
		return nil
	}
	d, err := decimal.NewFromString(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid amount %q", node.Line, node.Value)
	}
	a.NullDecimal = decimal.NewNullDecimal(d)
	return nil
}

// PeriodFixture describes one period with its tables.
type PeriodFixture struct {
	Period struct {
		Code      string `yaml:"code"`
		SalesFrom string `yaml:"sales_from"`
		SalesTo   string `yaml:"sales_to"`
		FeeFrom   string `yaml:"fee_from"`
		FeeTo     string `yaml:"fee_to"`
	} `yaml:"period"`
	Scales []struct {
		Category     string `yaml:"category"`
		MaxIncome    Amount `yaml:"max_income"`
		MaxArea      Amount `yaml:"max_area"`
		MaxPower     Amount `yaml:"max_power"`
		MaxRent      Amount `yaml:"max_rent"`
		MaxUnitPrice Amount `yaml:"max_unit_price"`
	} `yaml:"scales"`
	Components []struct {
		Category          string `yaml:"category"`
		Type              string `yaml:"type"`
		Province          string `yaml:"province"`
		Value             Amount `yaml:"value"`
		HasMunicipal      bool   `yaml:"has_municipal"`
		HasIntegratedIIBB bool   `yaml:"has_integrated_iibb"`
	} `yaml:"components"`
}

// ClientFixture describes one client for offline evaluation. Sales and
// Purchases are the sums over the period's observation window.
type ClientFixture struct {
	ID                  string `yaml:"id"`
	Activity            string `yaml:"activity"`
	Province            string `yaml:"province"`
	SpecialRegimeWorker bool   `yaml:"special_regime_worker"`
	Retired             bool   `yaml:"retired"`
	Exempt              bool   `yaml:"exempt"`
	Multilateral        bool   `yaml:"multilateral"`
	HasPremises         bool   `yaml:"has_premises"`
	PremisesRented      bool   `yaml:"premises_rented"`
	Dependents          int    `yaml:"dependents"`
	Area                Amount `yaml:"area"`
	Rent                Amount `yaml:"rent"`
	Power               Amount `yaml:"power"`
	Sales               Amount `yaml:"sales"`
	Purchases           Amount `yaml:"purchases"`
	UnitsSold           int    `yaml:"units_sold"`
	PreviousCategory    string `yaml:"previous_category"`
	PreviousFee         Amount `yaml:"previous_fee"`
}

// LoadPeriod reads a period fixture file.
func LoadPeriod(path string) (*PeriodFixture, error) {
	var f PeriodFixture
	if err := load(path, &f); err != nil {
		return nil, err
	}
	if f.Period.Code == "" {
		return nil, fmt.Errorf("parse %s: period code is missing", path)
	}
	return &f, nil
}

// LoadClient reads a client fixture file.
func LoadClient(path string) (*ClientFixture, error) {
	var c ClientFixture
	if err := load(path, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func load(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fixture: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// PeriodInput returns the period definition as a create request.
func (f *PeriodFixture) PeriodInput() period.Input {
	return period.Input{
		Code:      f.Period.Code,
		SalesFrom: f.Period.SalesFrom,
		SalesTo:   f.Period.SalesTo,
		FeeFrom:   f.Period.FeeFrom,
		FeeTo:     f.Period.FeeTo,
	}
}

func (f *PeriodFixture) ScaleInputs() []period.ScaleInput {
	out := make([]period.ScaleInput, 0, len(f.Scales))
	for _, s := range f.Scales {
		out = append(out, period.ScaleInput{
			Category:     s.Category,
			MaxIncome:    s.MaxIncome.NullDecimal,
			MaxArea:      s.MaxArea.NullDecimal,
			MaxPower:     s.MaxPower.NullDecimal,
			MaxRent:      s.MaxRent.NullDecimal,
			MaxUnitPrice: s.MaxUnitPrice.NullDecimal,
		})
	}
	return out
}

func (f *PeriodFixture) ComponentInputs() []period.ComponentInput {
	out := make([]period.ComponentInput, 0, len(f.Components))
	for _, c := range f.Components {
		out = append(out, period.ComponentInput{
			Category:          c.Category,
			Type:              c.Type,
			Province:          c.Province,
			Value:             c.Value.NullDecimal,
			HasMunicipal:      c.HasMunicipal,
			HasIntegratedIIBB: c.HasIntegratedIIBB,
		})
	}
	return out
}

// Tables converts the fixture into the engine's table values.
func (f *PeriodFixture) Tables() ([]recategorization.ScaleRow, []recategorization.FeeComponent) {
	scales := make([]models.ScaleRow, 0, len(f.Scales))
	for _, s := range f.ScaleInputs() {
		scales = append(scales, models.ScaleRow{
			Category:     s.Category,
			MaxIncome:    s.MaxIncome,
			MaxArea:      s.MaxArea,
			MaxPower:     s.MaxPower,
			MaxRent:      s.MaxRent,
			MaxUnitPrice: s.MaxUnitPrice,
		})
	}

	components := make([]models.FeeComponent, 0, len(f.Components))
	for _, c := range f.ComponentInputs() {
		components = append(components, models.FeeComponent{
			Category:          c.Category,
			Type:              c.Type,
			Province:          c.Province,
			Value:             c.Value,
			HasMunicipal:      c.HasMunicipal,
			HasIntegratedIIBB: c.HasIntegratedIIBB,
		})
	}

	return models.EngineScales(scales), models.EngineComponents(components)
}

// Metrics converts the fixture into engine input. Missing amounts are zero.
func (c *ClientFixture) Metrics() recategorization.ClientMetrics {
	return recategorization.ClientMetrics{
		ClientID:            c.ID,
		Activity:            recategorization.Activity(c.Activity),
		Province:            c.Province,
		SpecialRegimeWorker: c.SpecialRegimeWorker,
		Retired:             c.Retired,
		Exempt:              c.Exempt,
		Multilateral:        c.Multilateral,
		HasPremises:         c.HasPremises,
		PremisesRented:      c.PremisesRented,
		Dependents:          c.Dependents,
		Area:                c.Area.Decimal,
		Rent:                c.Rent.Decimal,
		Power:               c.Power.Decimal,
		Sales:               c.Sales.Decimal,
		Purchases:           c.Purchases.Decimal,
		UnitsSold:           c.UnitsSold,
		PreviousCategory:    recategorization.Category(c.PreviousCategory),
		PreviousFee:         c.PreviousFee.NullDecimal,
	}
}

// Source serves the fixture's tables under its period code, for running the
// engine without a database.
func (f *PeriodFixture) Source() recategorization.Tables {
	scales, components := f.Tables()
	return &fixtureTables{code: f.Period.Code, scales: scales, components: components}
}

type fixtureTables struct {
	code       string
	scales     []recategorization.ScaleRow
	components []recategorization.FeeComponent
}

func (t *fixtureTables) ScaleTable(_ context.Context, code string) ([]recategorization.ScaleRow, error) {
	if code != t.code {
		return nil, fmt.Errorf("%w: %s", recategorization.ErrUnknownPeriod, code)
	}
	return t.scales, nil
}

func (t *fixtureTables) FeeTable(_ context.Context, code string) ([]recategorization.FeeComponent, error) {
	if code != t.code {
		return nil, fmt.Errorf("%w: %s", recategorization.ErrUnknownPeriod, code)
	}
	return t.components, nil
}
