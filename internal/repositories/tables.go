package repositories

import (
	"context"
	"log"

	"estudio/internal/recategorization"
	"estudio/internal/repositories/cache"
)

// TableCache stores period tables between requests.
type TableCache interface {
	GetPeriodTables(ctx context.Context, code string) (*cache.PeriodTables, bool, error)
	SetPeriodTables(ctx context.Context, code string, tables *cache.PeriodTables) error
	InvalidatePeriod(ctx context.Context, code string) error
}

// CachedTables serves period tables from the cache and falls back to the
// database. Cache failures are logged and never fail a request.
type CachedTables struct {
	source recategorization.Tables
	cache  TableCache
}

// NewCachedTables wraps source. A nil cache disables caching.
func NewCachedTables(source recategorization.Tables, cache TableCache) *CachedTables {
	if source == nil {
		panic("tables source is required")
	}
	return &CachedTables{source: source, cache: cache}
}

func (t *CachedTables) ScaleTable(ctx context.Context, code string) ([]recategorization.ScaleRow, error) {
	tables, err := t.load(ctx, code)
	if err != nil {
		return nil, err
	}
	return tables.Scales, nil
}

func (t *CachedTables) FeeTable(ctx context.Context, code string) ([]recategorization.FeeComponent, error) {
	tables, err := t.load(ctx, code)
	if err != nil {
		return nil, err
	}
	return tables.Components, nil
}

// Warm reloads a period's tables from the database into the cache.
func (t *CachedTables) Warm(ctx context.Context, code string) error {
	tables, err := t.fetch(ctx, code)
	if err != nil {
		return err
	}
	if t.cache == nil {
		return nil
	}
	return t.cache.SetPeriodTables(ctx, code, tables)
}

func (t *CachedTables) load(ctx context.Context, code string) (*cache.PeriodTables, error) {
	if t.cache != nil {
		tables, found, err := t.cache.GetPeriodTables(ctx, code)
		if err != nil {
			log.Printf("⚠️ Period cache read failed for %s: %v", code, err)
		} else if found {
			return tables, nil
		}
	}

	tables, err := t.fetch(ctx, code)
	if err != nil {
		return nil, err
	}

	if t.cache != nil {
		if err := t.cache.SetPeriodTables(ctx, code, tables); err != nil {
			log.Printf("⚠️ Period cache write failed for %s: %v", code, err)
		}
	}
	return tables, nil
}

func (t *CachedTables) fetch(ctx context.Context, code string) (*cache.PeriodTables, error) {
	scales, err := t.source.ScaleTable(ctx, code)
	if err != nil {
		return nil, err
	}
	components, err := t.source.FeeTable(ctx, code)
	if err != nil {
		return nil, err
	}
	return &cache.PeriodTables{Scales: scales, Components: components}, nil
}
