package recategorization

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Review notes attached to breakdowns that need manual handling.
const (
	ReviewMultilateral = "multilateral convention taxpayer: provincial gross receipts billed outside the simplified regime"
	ReviewExempt       = "tax-exempt taxpayer: provincial gross receipts not billed"
)

// Composer builds a category's periodic fee from a period's fee table.
type Composer struct {
	municipalSurcharge    decimal.Decimal
	perDependentSurcharge decimal.Decimal
}

// NewComposer creates a composer using the policy constants in cfg.
func NewComposer(cfg Config) *Composer {
	cfg = cfg.withDefaults()
	return &Composer{
		municipalSurcharge:    cfg.MunicipalSurcharge,
		perDependentSurcharge: cfg.PerDependentSurcharge,
	}
}

type componentKey struct {
	typ      ComponentType
	province string
}

// Compose returns the fee breakdown for category. Every line carries a status
// so that a zero amount is always explained.
func (c *Composer) Compose(category Category, m ClientMetrics, components []FeeComponent) (*FeeBreakdown, error) {
	category = category.Normalize()
	table, err := indexComponents(category, components)
	if err != nil {
		return nil, err
	}

	b := &FeeBreakdown{Category: category, Total: decimal.Zero}
	province := normalizeProvince(m.Province)
	suppressed := m.Retired || m.SpecialRegimeWorker

	tax, err := requireComponent(table, category, ComponentTax)
	if err != nil {
		return nil, err
	}
	b.add(FeeLine{Type: ComponentTax, Amount: tax.Value.Decimal, Status: LineCharged})

	if suppressed {
		b.add(FeeLine{Type: ComponentPension, Amount: decimal.Zero, Status: LineSuppressed})
		b.add(FeeLine{Type: ComponentHealth, Amount: decimal.Zero, Status: LineSuppressed})
	} else {
		pension, err := requireComponent(table, category, ComponentPension)
		if err != nil {
			return nil, err
		}
		b.add(FeeLine{Type: ComponentPension, Amount: pension.Value.Decimal, Status: LineCharged})

		health, err := requireComponent(table, category, ComponentHealth)
		if err != nil {
			return nil, err
		}
		b.add(FeeLine{Type: ComponentHealth, Amount: c.healthAmount(health.Value.Decimal, m.Dependents), Status: LineCharged})
	}

	prov, hasProv := table[componentKey{ComponentGrossReceipts, province}]
	line := FeeLine{Type: ComponentGrossReceipts, Province: province, Amount: decimal.Zero}
	switch {
	case m.Multilateral:
		line.Status = LineMultilateral
		b.Review = append(b.Review, ReviewMultilateral)
	case m.Exempt:
		line.Status = LineExempt
		b.Review = append(b.Review, ReviewExempt)
	case hasProv && prov.HasIntegratedIIBB:
		line.Status = LineIntegrated
	case !hasProv || !prov.Value.Valid:
		line.Status = LineNotApplicable
	default:
		line.Amount = prov.Value.Decimal
		line.Status = LineCharged
	}
	b.add(line)

	if tax.HasMunicipal || (hasProv && prov.HasMunicipal) {
		if !c.municipalSurcharge.IsPositive() {
			return nil, &ConfigError{
				Kind:     KindMissingComponent,
				Category: category,
				Detail:   "category carries the municipal flag but no municipal surcharge is configured",
			}
		}
		b.add(FeeLine{Type: ComponentMunicipal, Province: province, Amount: c.municipalSurcharge, Status: LineCharged})
	}

	return b, nil
}

func (c *Composer) healthAmount(base decimal.Decimal, dependents int) decimal.Decimal {
	if !c.perDependentSurcharge.IsPositive() || dependents <= 0 {
		return base
	}
	factor := decimal.NewFromInt(1).Add(decimal.NewFromInt(int64(dependents)).Mul(c.perDependentSurcharge))
	return base.Mul(factor)
}

// indexComponents keeps the components of one category, keyed by type and
// province. It rejects duplicates, unknown types, negative values and a
// province on anything but a gross receipts component.
func indexComponents(category Category, components []FeeComponent) (map[componentKey]FeeComponent, error) {
	table := make(map[componentKey]FeeComponent)
	for _, fc := range components {
		if fc.Category.Compare(category) != 0 {
			continue
		}
		if !fc.Type.Valid() {
			return nil, &ConfigError{
				Kind:     KindInvalidComponent,
				Category: category,
				Detail:   fmt.Sprintf("unknown component type %q", fc.Type),
			}
		}
		key := componentKey{fc.Type, normalizeProvince(fc.Province)}
		if provincial := fc.Type == ComponentGrossReceipts; provincial != (key.province != "") {
			detail := fmt.Sprintf("%s component must not carry a province", fc.Type)
			if provincial {
				detail = fmt.Sprintf("%s component without province", fc.Type)
			}
			return nil, &ConfigError{
				Kind:     KindInvalidComponent,
				Category: category,
				Detail:   detail,
			}
		}
		if _, dup := table[key]; dup {
			return nil, &ConfigError{
				Kind:     KindInvalidComponent,
				Category: category,
				Detail:   fmt.Sprintf("duplicate %s component for province %q", fc.Type, key.province),
			}
		}
		if fc.Value.Valid && fc.Value.Decimal.IsNegative() {
			return nil, &ConfigError{
				Kind:     KindInvalidComponent,
				Category: category,
				Detail:   fmt.Sprintf("negative %s component", fc.Type),
			}
		}
		table[key] = fc
	}
	return table, nil
}

func requireComponent(table map[componentKey]FeeComponent, category Category, typ ComponentType) (FeeComponent, error) {
	fc, ok := table[componentKey{typ, ""}]
	if !ok {
		return FeeComponent{}, &ConfigError{
			Kind:     KindMissingComponent,
			Category: category,
			Detail:   fmt.Sprintf("no %s component configured", typ),
		}
	}
	if !fc.Value.Valid {
		return FeeComponent{}, &ConfigError{
			Kind:     KindMissingComponent,
			Category: category,
			Detail:   fmt.Sprintf("%s component has no value", typ),
		}
	}
	return fc, nil
}

// ValidateFeeTable checks every category present in components for unknown
// types, duplicates, misplaced provinces and negative values. It does not require any component to
// be present.
func ValidateFeeTable(components []FeeComponent) error {
	seen := make(map[Category]bool)
	for _, fc := range components {
		cat := fc.Category.Normalize()
		if cat.IsZero() {
			return &ConfigError{Kind: KindInvalidComponent, Detail: "component without category"}
		}
		if seen[cat] {
			continue
		}
		seen[cat] = true
		if _, err := indexComponents(cat, components); err != nil {
			return err
		}
	}
	return nil
}
