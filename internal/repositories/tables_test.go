package repositories

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"estudio/internal/recategorization"
	"estudio/internal/repositories/cache"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) ScaleTable(ctx context.Context, code string) ([]recategorization.ScaleRow, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]recategorization.ScaleRow), args.Error(1)
}

func (m *MockSource) FeeTable(ctx context.Context, code string) ([]recategorization.FeeComponent, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]recategorization.FeeComponent), args.Error(1)
}

type MockTableCache struct {
	mock.Mock
}

func (m *MockTableCache) GetPeriodTables(ctx context.Context, code string) (*cache.PeriodTables, bool, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*cache.PeriodTables), args.Bool(1), args.Error(2)
}

func (m *MockTableCache) SetPeriodTables(ctx context.Context, code string, tables *cache.PeriodTables) error {
	args := m.Called(ctx, code, tables)
	return args.Error(0)
}

func (m *MockTableCache) InvalidatePeriod(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func sampleTables() *cache.PeriodTables {
	return &cache.PeriodTables{
		Scales: []recategorization.ScaleRow{
			{Category: "A", MaxIncome: decimal.NewNullDecimal(decimal.NewFromInt(100000))},
		},
		Components: []recategorization.FeeComponent{
			{Category: "A", Type: recategorization.ComponentTax, Value: decimal.NewNullDecimal(decimal.NewFromInt(10))},
		},
	}
}

func TestCachedTables(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		setupMock func(*MockSource, *MockTableCache)
		wantErr   error
	}{
		{
			name: "cache hit skips the database",
			setupMock: func(src *MockSource, c *MockTableCache) {
				c.On("GetPeriodTables", ctx, "P1").Return(sampleTables(), true, nil)
			},
		},
		{
			name: "cache miss loads and stores",
			setupMock: func(src *MockSource, c *MockTableCache) {
				tables := sampleTables()
				c.On("GetPeriodTables", ctx, "P1").Return(nil, false, nil)
				src.On("ScaleTable", ctx, "P1").Return(tables.Scales, nil)
				src.On("FeeTable", ctx, "P1").Return(tables.Components, nil)
				c.On("SetPeriodTables", ctx, "P1", tables).Return(nil)
			},
		},
		{
			name: "cache failures fall through",
			setupMock: func(src *MockSource, c *MockTableCache) {
				tables := sampleTables()
				c.On("GetPeriodTables", ctx, "P1").Return(nil, false, errors.New("redis down"))
				src.On("ScaleTable", ctx, "P1").Return(tables.Scales, nil)
				src.On("FeeTable", ctx, "P1").Return(tables.Components, nil)
				c.On("SetPeriodTables", ctx, "P1", mock.Anything).Return(errors.New("redis down"))
			},
		},
		{
			name: "unknown period is not cached",
			setupMock: func(src *MockSource, c *MockTableCache) {
				c.On("GetPeriodTables", ctx, "P1").Return(nil, false, nil)
				src.On("ScaleTable", ctx, "P1").Return(nil, fmt.Errorf("%w: P1", ErrPeriodNotFound))
			},
			wantErr: recategorization.ErrUnknownPeriod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := new(MockSource)
			c := new(MockTableCache)
			tt.setupMock(src, c)

			tables := NewCachedTables(src, c)
			scales, err := tables.ScaleTable(ctx, "P1")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				c.AssertNotCalled(t, "SetPeriodTables", mock.Anything, mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Len(t, scales, 1)
			}

			src.AssertExpectations(t)
			c.AssertExpectations(t)
		})
	}
}

func TestCachedTables_WithoutCache(t *testing.T) {
	ctx := context.Background()
	src := new(MockSource)
	tables := sampleTables()
	src.On("ScaleTable", ctx, "P1").Return(tables.Scales, nil)
	src.On("FeeTable", ctx, "P1").Return(tables.Components, nil)

	cached := NewCachedTables(src, nil)
	components, err := cached.FeeTable(ctx, "P1")
	require.NoError(t, err)
	assert.Len(t, components, 1)
	require.NoError(t, cached.Warm(ctx, "P1"))
}

func TestCachedTables_Warm(t *testing.T) {
	ctx := context.Background()
	src := new(MockSource)
	c := new(MockTableCache)
	tables := sampleTables()
	src.On("ScaleTable", ctx, "P1").Return(tables.Scales, nil)
	src.On("FeeTable", ctx, "P1").Return(tables.Components, nil)
	c.On("SetPeriodTables", ctx, "P1", tables).Return(nil)

	require.NoError(t, NewCachedTables(src, c).Warm(ctx, "P1"))
	c.AssertNotCalled(t, "GetPeriodTables", mock.Anything, mock.Anything)
	c.AssertExpectations(t)
}

func TestNewCachedTables_PanicsWithoutSource(t *testing.T) {
	assert.Panics(t, func() { NewCachedTables(nil, nil) })
}

func TestTenantScope(t *testing.T) {
	tests := []struct {
		schema  string
		wantErr bool
	}{
		{schema: "studio_42"},
		{schema: "Estudio-Norte"},
		{schema: "", wantErr: true},
		{schema: "public", wantErr: true},
		{schema: "pg_catalog", wantErr: true},
		{schema: "information_schema", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.schema, func(t *testing.T) {
			err := ValidateTenant(tt.schema)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTenant)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.Equal(t, `SET LOCAL search_path TO "studio_42", public`, SearchPathStatement("studio_42"))
	assert.Equal(t, `SET LOCAL search_path TO "x""; DROP SCHEMA y", public`, SearchPathStatement(`x"; DROP SCHEMA y`))
}

func TestErrPeriodNotFoundIsUnknownPeriod(t *testing.T) {
	assert.ErrorIs(t, ErrPeriodNotFound, recategorization.ErrUnknownPeriod)
}
