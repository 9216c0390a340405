package recategorization

import "github.com/shopspring/decimal"

// Default configuration values
const (
	DefaultBatchWorkers     = 4
	DefaultDualLeasingFloor = Category("D")
)

// Config holds the policy constants that are not part of a period's tables.
type Config struct {
	// MunicipalSurcharge is the fixed amount added when the selected category
	// carries the municipal flag.
	MunicipalSurcharge decimal.Decimal

	// PerDependentSurcharge scales the health component by
	// 1 + dependents*PerDependentSurcharge. Zero disables the rule.
	PerDependentSurcharge decimal.Decimal

	// DualLeasingFloor is the lowest category a dual-property lessor may hold.
	DualLeasingFloor Category

	BatchWorkers int
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		MunicipalSurcharge:    decimal.Zero,
		PerDependentSurcharge: decimal.NewFromInt(1),
		DualLeasingFloor:      DefaultDualLeasingFloor,
		BatchWorkers:          DefaultBatchWorkers,
	}
}

func (c Config) withDefaults() Config {
	if c.DualLeasingFloor.IsZero() {
		c.DualLeasingFloor = DefaultDualLeasingFloor
	}
	c.DualLeasingFloor = c.DualLeasingFloor.Normalize()
	if c.BatchWorkers <= 0 {
		c.BatchWorkers = DefaultBatchWorkers
	}
	if c.PerDependentSurcharge.IsNegative() {
		c.PerDependentSurcharge = decimal.Zero
	}
	return c
}
