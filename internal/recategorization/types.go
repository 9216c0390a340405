package recategorization

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ScaleRow holds one category's maxima for a period. An invalid (null) maximum
// means the dimension is not capped for that category.
type ScaleRow struct {
	Category     Category            `json:"category"`
	MaxIncome    decimal.NullDecimal `json:"max_income"`
	MaxArea      decimal.NullDecimal `json:"max_area"`
	MaxPower     decimal.NullDecimal `json:"max_power"`
	MaxRent      decimal.NullDecimal `json:"max_rent"`
	MaxUnitPrice decimal.NullDecimal `json:"max_unit_price"`
}

// ComponentType identifies a fee line.
type ComponentType string

const (
	ComponentTax           ComponentType = "tax"
	ComponentPension       ComponentType = "pension"
	ComponentHealth        ComponentType = "health"
	ComponentGrossReceipts ComponentType = "gross_receipts"

	// ComponentMunicipal only appears on composed breakdowns. It is never
	// configured per category; its amount comes from Config.
	ComponentMunicipal ComponentType = "municipal"
)

// ComponentTypes lists the configurable component types.
var ComponentTypes = []ComponentType{ComponentTax, ComponentPension, ComponentHealth, ComponentGrossReceipts}

// Valid reports whether t can be configured on a fee table.
func (t ComponentType) Valid() bool {
	switch t {
	case ComponentTax, ComponentPension, ComponentHealth, ComponentGrossReceipts:
		return true
	}
	return false
}

// FeeComponent is one configured monetary line for a category. Province is
// empty for national components.
type FeeComponent struct {
	Category          Category            `json:"category"`
	Type              ComponentType       `json:"type"`
	Province          string              `json:"province,omitempty"`
	Value             decimal.NullDecimal `json:"value"`
	HasMunicipal      bool                `json:"has_municipal"`
	HasIntegratedIIBB bool                `json:"has_integrated_iibb"`
}

// LineStatus explains why a fee line does or does not count toward the total.
type LineStatus string

const (
	LineCharged       LineStatus = "charged"
	LineSuppressed    LineStatus = "suppressed"
	LineIntegrated    LineStatus = "omitted_integrated"
	LineExempt        LineStatus = "omitted_exempt"
	LineMultilateral  LineStatus = "omitted_multilateral"
	LineNotApplicable LineStatus = "not_applicable"
)

// FeeLine is one component of a composed fee.
type FeeLine struct {
	Type     ComponentType   `json:"type"`
	Province string          `json:"province,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	Status   LineStatus      `json:"status"`
}

// FeeBreakdown is the composed periodic fee for one category.
type FeeBreakdown struct {
	Category Category        `json:"category"`
	Lines    []FeeLine       `json:"lines"`
	Total    decimal.Decimal `json:"total"`
	Review   []string        `json:"review,omitempty"`
}

// Line returns the first line of the given type.
func (b *FeeBreakdown) Line(t ComponentType) (FeeLine, bool) {
	for _, l := range b.Lines {
		if l.Type == t {
			return l, true
		}
	}
	return FeeLine{}, false
}

func (b *FeeBreakdown) add(line FeeLine) {
	line.Amount = line.Amount.Round(2)
	b.Lines = append(b.Lines, line)
	if line.Status == LineCharged {
		b.Total = b.Total.Add(line.Amount)
	}
}

// ClientMetrics is everything the engine needs to know about one client for
// one period. Sales and Purchases are the sums over the period's observation
// window; the caller computes them.
type ClientMetrics struct {
	ClientID            string              `json:"client_id"`
	Activity            Activity            `json:"activity"`
	Province            string              `json:"province"`
	SpecialRegimeWorker bool                `json:"special_regime_worker"`
	Retired             bool                `json:"retired"`
	Exempt              bool                `json:"exempt"`
	Multilateral        bool                `json:"multilateral"`
	HasPremises         bool                `json:"has_premises"`
	PremisesRented      bool                `json:"premises_rented"`
	Dependents          int                 `json:"dependents"`
	Area                decimal.Decimal     `json:"area"`
	Rent                decimal.Decimal     `json:"rent"`
	Power               decimal.Decimal     `json:"power"`
	Sales               decimal.Decimal     `json:"sales"`
	Purchases           decimal.Decimal     `json:"purchases"`
	UnitsSold           int                 `json:"units_sold"`
	PreviousCategory    Category            `json:"previous_category,omitempty"`
	PreviousFee         decimal.NullDecimal `json:"previous_fee"`
}

// Dimension names a scale dimension that can put a client out of range.
type Dimension string

const (
	DimensionIncome    Dimension = "income"
	DimensionArea      Dimension = "area"
	DimensionPower     Dimension = "power"
	DimensionRent      Dimension = "rent"
	DimensionUnitPrice Dimension = "unit_price"
)

// OutOfRange reports the dimension whose value exceeds the top category's cap.
type OutOfRange struct {
	Dimension Dimension       `json:"dimension"`
	Value     decimal.Decimal `json:"value"`
	Limit     decimal.Decimal `json:"limit"`
}

// Classification is the classifier's outcome: either a category or an
// out-of-range signal.
type Classification struct {
	Category   Category        `json:"category,omitempty"`
	Billable   decimal.Decimal `json:"billable"`
	OutOfRange *OutOfRange     `json:"out_of_range,omitempty"`
}

// Result is the outcome of recategorizing one client for one period.
type Result struct {
	ClientID         string              `json:"client_id"`
	Period           string              `json:"period"`
	Category         Category            `json:"category,omitempty"`
	BillableIncome   decimal.Decimal     `json:"billable_income"`
	Fee              *FeeBreakdown       `json:"fee,omitempty"`
	PreviousCategory Category            `json:"previous_category,omitempty"`
	PreviousFee      decimal.NullDecimal `json:"previous_fee"`
	FeeDelta         decimal.NullDecimal `json:"fee_delta"`
	Change           Change              `json:"change"`
	OutOfRange       *OutOfRange         `json:"out_of_range,omitempty"`
	Review           []string            `json:"review,omitempty"`
}

// NeedsReview reports whether a person must look at this result before it is
// used for billing.
func (r *Result) NeedsReview() bool {
	return r.Change == ChangeOutOfRange || len(r.Review) > 0
}

func normalizeProvince(p string) string {
	return strings.ToUpper(strings.TrimSpace(p))
}
