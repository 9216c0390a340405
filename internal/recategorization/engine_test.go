package recategorization

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, cfg Config) (*Engine, *MockTables) {
	t.Helper()
	tables := new(MockTables)
	tables.On("ScaleTable", mock.Anything, "P1").Return(fullScale(), nil)
	tables.On("FeeTable", mock.Anything, "P1").Return(fullFeeTable(), nil)
	return NewEngine(tables, cfg), tables
}

func TestNewEngine_PanicsWithoutTables(t *testing.T) {
	assert.Panics(t, func() { NewEngine(nil, DefaultConfig()) })
}

func TestEngine_Recategorize(t *testing.T) {
	engine, tables := newTestEngine(t, DefaultConfig())

	res, err := engine.Recategorize(context.Background(), "P1", servicesClient("150000"))
	require.NoError(t, err)

	assert.Equal(t, "c-1", res.ClientID)
	assert.Equal(t, "P1", res.Period)
	assert.Equal(t, Category("B"), res.Category)
	assert.Equal(t, ChangeNewlyAssigned, res.Change)
	assertDecimal(t, "150000", res.BillableIncome)
	require.NotNil(t, res.Fee)
	assertDecimal(t, "1060", res.Fee.Total)
	assert.False(t, res.FeeDelta.Valid)
	assert.False(t, res.NeedsReview())
	tables.AssertExpectations(t)
}

func TestEngine_ChangeIndicator(t *testing.T) {
	engine, _ := newTestEngine(t, DefaultConfig())

	tests := []struct {
		name     string
		previous Category
		sales    string
		want     Change
	}{
		{name: "first assignment", previous: "", sales: "150000", want: ChangeNewlyAssigned},
		{name: "upgraded", previous: "A", sales: "150000", want: ChangeUpgraded},
		{name: "downgraded", previous: "D", sales: "150000", want: ChangeDowngraded},
		{name: "unchanged", previous: "B", sales: "150000", want: ChangeUnchanged},
		{name: "unchanged lower case previous", previous: "b", sales: "150000", want: ChangeUnchanged},
		{name: "out of range", previous: "D", sales: "400000.01", want: ChangeOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := servicesClient(tt.sales)
			m.PreviousCategory = tt.previous

			res, err := engine.Recategorize(context.Background(), "P1", m)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Change)
		})
	}
}

func TestEngine_OutOfRangeHasNoFee(t *testing.T) {
	engine, _ := newTestEngine(t, DefaultConfig())
	m := servicesClient("900000")
	m.PreviousFee = decimal.NewNullDecimal(dec("1000"))

	res, err := engine.Recategorize(context.Background(), "P1", m)
	require.NoError(t, err)

	assert.True(t, res.Category.IsZero())
	assert.Nil(t, res.Fee)
	assert.False(t, res.FeeDelta.Valid)
	require.NotNil(t, res.OutOfRange)
	assert.Equal(t, DimensionIncome, res.OutOfRange.Dimension)
	assert.True(t, res.NeedsReview())
}

func TestEngine_FeeDelta(t *testing.T) {
	engine, _ := newTestEngine(t, DefaultConfig())

	tests := []struct {
		name      string
		previous  string
		wantDelta string
	}{
		{name: "fee went up", previous: "1000", wantDelta: "60"},
		{name: "fee went down", previous: "1500.25", wantDelta: "-440.25"},
		{name: "same fee", previous: "1060", wantDelta: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := servicesClient("150000")
			m.PreviousCategory = "B"
			m.PreviousFee = decimal.NewNullDecimal(dec(tt.previous))

			res, err := engine.Recategorize(context.Background(), "P1", m)
			require.NoError(t, err)
			require.True(t, res.FeeDelta.Valid)
			assertDecimal(t, tt.wantDelta, res.FeeDelta.Decimal)
		})
	}
}

func TestEngine_ReviewFlagsPropagate(t *testing.T) {
	engine, _ := newTestEngine(t, DefaultConfig())
	m := servicesClient("150000")
	m.Multilateral = true

	res, err := engine.Recategorize(context.Background(), "P1", m)
	require.NoError(t, err)
	assert.Equal(t, []string{ReviewMultilateral}, res.Review)
	assert.True(t, res.NeedsReview())
}

func TestEngine_Idempotent(t *testing.T) {
	engine, _ := newTestEngine(t, Config{PerDependentSurcharge: dec("0.5"), MunicipalSurcharge: dec("10")})
	m := ClientMetrics{
		ClientID:         "c-9",
		Activity:         ActivityGoods,
		Province:         "BA",
		HasPremises:      true,
		Area:             dec("40"),
		Power:            dec("2000"),
		Sales:            dec("95000"),
		Purchases:        dec("110000"),
		UnitsSold:        40,
		Dependents:       2,
		PreviousCategory: "A",
		PreviousFee:      decimal.NewNullDecimal(dec("900")),
	}

	first, err := engine.Recategorize(context.Background(), "P1", m)
	require.NoError(t, err)
	second, err := engine.Recategorize(context.Background(), "P1", m)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, Category("B"), first.Category)
}

func TestEngine_InvalidInputSkipsTables(t *testing.T) {
	tables := new(MockTables)
	engine := NewEngine(tables, DefaultConfig())

	tests := []struct {
		name   string
		mutate func(*ClientMetrics)
		field  string
	}{
		{name: "negative sales", mutate: func(m *ClientMetrics) { m.Sales = dec("-1") }, field: "sales"},
		{name: "unknown activity", mutate: func(m *ClientMetrics) { m.Activity = "mining" }, field: "activity"},
		{name: "missing province", mutate: func(m *ClientMetrics) { m.Province = "" }, field: "province"},
		{name: "negative dependents", mutate: func(m *ClientMetrics) { m.Dependents = -1 }, field: "dependents"},
		{name: "rented without premises", mutate: func(m *ClientMetrics) { m.PremisesRented = true }, field: "premises_rented"},
		{name: "negative previous fee", mutate: func(m *ClientMetrics) { m.PreviousFee = decimal.NewNullDecimal(dec("-3")) }, field: "previous_fee"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := servicesClient("1000")
			tt.mutate(&m)

			_, err := engine.Recategorize(context.Background(), "P1", m)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)

			var inputErr *InputError
			require.True(t, errors.As(err, &inputErr))
			assert.Contains(t, inputErr.Fields, tt.field)
			assert.Equal(t, "c-1", inputErr.ClientID)
		})
	}

	tables.AssertNotCalled(t, "ScaleTable", mock.Anything, mock.Anything)
	tables.AssertNotCalled(t, "FeeTable", mock.Anything, mock.Anything)
}

func TestEngine_TableErrors(t *testing.T) {
	t.Run("unknown period", func(t *testing.T) {
		tables := new(MockTables)
		tables.On("ScaleTable", mock.Anything, "P9").Return(nil, fmt.Errorf("period %q: %w", "P9", ErrUnknownPeriod))
		engine := NewEngine(tables, DefaultConfig())

		_, err := engine.Recategorize(context.Background(), "P9", servicesClient("1"))
		var cfgErr *ConfigError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, KindMissingPeriod, cfgErr.Kind)
		assert.Equal(t, "P9", cfgErr.Period)
		tables.AssertNotCalled(t, "FeeTable", mock.Anything, mock.Anything)
	})

	t.Run("store failure is not a configuration error", func(t *testing.T) {
		storeErr := errors.New("connection refused")
		tables := new(MockTables)
		tables.On("ScaleTable", mock.Anything, "P1").Return(fullScale(), nil)
		tables.On("FeeTable", mock.Anything, "P1").Return(nil, storeErr)
		engine := NewEngine(tables, DefaultConfig())

		_, err := engine.Recategorize(context.Background(), "P1", servicesClient("1"))
		require.Error(t, err)
		assert.ErrorIs(t, err, storeErr)
		assert.NotErrorIs(t, err, ErrConfiguration)
	})

	t.Run("configuration error carries period", func(t *testing.T) {
		tables := new(MockTables)
		tables.On("ScaleTable", mock.Anything, "P2").Return([]ScaleRow{}, nil)
		tables.On("FeeTable", mock.Anything, "P2").Return(fullFeeTable(), nil)
		engine := NewEngine(tables, DefaultConfig())

		_, err := engine.Recategorize(context.Background(), "P2", servicesClient("1"))
		var cfgErr *ConfigError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, KindMissingScale, cfgErr.Kind)
		assert.Equal(t, "P2", cfgErr.Period)
		assert.Contains(t, err.Error(), "period=P2")
	})
}

func TestEngine_EvaluateScenario(t *testing.T) {
	engine, _ := newTestEngine(t, DefaultConfig())
	components := append(nationalComponents("A", "10", "20", "30"), nationalComponents("B", "40", "50", "60")...)

	tests := []struct {
		sales string
		want  Category
		total string
	}{
		{sales: "150000", want: "B", total: "150"},
		{sales: "100000", want: "A", total: "60"},
	}

	for _, tt := range tests {
		t.Run(tt.sales, func(t *testing.T) {
			res, err := engine.Evaluate("P1", servicesClient(tt.sales), twoCategoryScale(), components)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Category)
			assertDecimal(t, tt.total, res.Fee.Total)
		})
	}
}
