package recategorization

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func capOf(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

// twoCategoryScale is the A/B table used by the income scenarios.
func twoCategoryScale() []ScaleRow {
	return []ScaleRow{
		{Category: "A", MaxIncome: capOf("100000")},
		{Category: "B", MaxIncome: capOf("200000")},
	}
}

func fullScale() []ScaleRow {
	return []ScaleRow{
		{Category: "A", MaxIncome: capOf("100000"), MaxArea: capOf("30"), MaxPower: capOf("3330"), MaxRent: capOf("50000"), MaxUnitPrice: capOf("5000")},
		{Category: "B", MaxIncome: capOf("200000"), MaxArea: capOf("45"), MaxPower: capOf("5000"), MaxRent: capOf("100000"), MaxUnitPrice: capOf("5000")},
		{Category: "C", MaxIncome: capOf("300000"), MaxArea: capOf("60"), MaxPower: capOf("6700"), MaxRent: capOf("150000"), MaxUnitPrice: capOf("5000")},
		{Category: "D", MaxIncome: capOf("400000"), MaxArea: capOf("85"), MaxPower: capOf("10000"), MaxRent: capOf("200000")},
	}
}

func nationalComponents(category Category, tax, pension, health string) []FeeComponent {
	return []FeeComponent{
		{Category: category, Type: ComponentTax, Value: capOf(tax)},
		{Category: category, Type: ComponentPension, Value: capOf(pension)},
		{Category: category, Type: ComponentHealth, Value: capOf(health)},
	}
}

func fullFeeTable() []FeeComponent {
	var table []FeeComponent
	for i, cat := range []Category{"A", "B", "C", "D"} {
		step := int64(i + 1)
		table = append(table, nationalComponents(cat, decimal.NewFromInt(100*step).String(), "500", "300")...)
		table = append(table,
			FeeComponent{Category: cat, Type: ComponentGrossReceipts, Province: "BA", Value: decimal.NewNullDecimal(decimal.NewFromInt(40 + 10*step))},
			FeeComponent{Category: cat, Type: ComponentGrossReceipts, Province: "CBA", Value: capOf("40"), HasIntegratedIIBB: true},
			FeeComponent{Category: cat, Type: ComponentGrossReceipts, Province: "SF"},
		)
	}
	return table
}

func servicesClient(sales string) ClientMetrics {
	return ClientMetrics{
		ClientID: "c-1",
		Activity: ActivityServices,
		Province: "BA",
		Sales:    dec(sales),
	}
}

// MockTables is a testify mock of the Tables source.
type MockTables struct {
	mock.Mock
}

func (m *MockTables) ScaleTable(ctx context.Context, period string) ([]ScaleRow, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ScaleRow), args.Error(1)
}

func (m *MockTables) FeeTable(ctx context.Context, period string) ([]FeeComponent, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]FeeComponent), args.Error(1)
}
