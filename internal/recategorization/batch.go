package recategorization

import (
	"context"
	"errors"
	"sync"
	"time"
)

// BatchItem is one client to recategorize for one period.
type BatchItem struct {
	Period  string
	Metrics ClientMetrics
}

// BatchOptions configures batch recategorization.
type BatchOptions struct {
	Workers int // Number of parallel workers; 0 uses the engine default
}

// Outcome is the result or failure of one batch item. Exactly one of Result
// and Err is set.
type Outcome struct {
	ClientID string  `json:"client_id"`
	Period   string  `json:"period"`
	Result   *Result `json:"result,omitempty"`
	Err      error   `json:"-"`
}

// BatchReport holds every outcome, in input order, plus counters.
type BatchReport struct {
	Outcomes       []Outcome
	Succeeded      int
	OutOfRange     int
	ConfigErrors   int
	InputErrors    int
	OtherErrors    int
	ProcessingTime time.Duration
}

// RecategorizeBatch recategorizes every item on a bounded worker pool. A
// failing item never stops the others. Tables are loaded once per period.
func (e *Engine) RecategorizeBatch(ctx context.Context, items []BatchItem, opts BatchOptions) *BatchReport {
	start := time.Now()
	report := &BatchReport{Outcomes: make([]Outcome, len(items))}
	if len(items) == 0 {
		return report
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = e.config.BatchWorkers
	}
	if workers > len(items) {
		workers = len(items)
	}

	tables := newPeriodMemo(e.tables)

	work := make(chan int, len(items))
	for i := range items {
		work <- i
	}
	close(work)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range work {
				item := items[i]
				out := Outcome{ClientID: item.Metrics.ClientID, Period: item.Period}
				if err := ctx.Err(); err != nil {
					out.Err = err
				} else {
					out.Result, out.Err = e.recategorize(ctx, tables, item.Period, item.Metrics)
				}
				report.Outcomes[i] = out
			}
		}()
	}
	wg.Wait()

	for _, out := range report.Outcomes {
		switch {
		case out.Err == nil && out.Result.Change == ChangeOutOfRange:
			report.OutOfRange++
		case out.Err == nil:
			report.Succeeded++
		case errors.Is(out.Err, ErrConfiguration):
			report.ConfigErrors++
		case errors.Is(out.Err, ErrInvalidInput):
			report.InputErrors++
		default:
			report.OtherErrors++
		}
	}
	report.ProcessingTime = time.Since(start)
	return report
}

// Failed returns the number of items that produced an error.
func (r *BatchReport) Failed() int {
	return r.ConfigErrors + r.InputErrors + r.OtherErrors
}

// periodMemo loads each period's tables at most once per batch.
type periodMemo struct {
	source Tables

	mu      sync.Mutex
	entries map[string]*memoEntry
}

type memoEntry struct {
	once       sync.Once
	scales     []ScaleRow
	components []FeeComponent
	scaleErr   error
	feeErr     error
}

func newPeriodMemo(source Tables) *periodMemo {
	return &periodMemo{source: source, entries: make(map[string]*memoEntry)}
}

func (p *periodMemo) load(ctx context.Context, period string) *memoEntry {
	p.mu.Lock()
	entry, ok := p.entries[period]
	if !ok {
		entry = &memoEntry{}
		p.entries[period] = entry
	}
	p.mu.Unlock()

	entry.once.Do(func() {
		entry.scales, entry.scaleErr = p.source.ScaleTable(ctx, period)
		if entry.scaleErr == nil {
			entry.components, entry.feeErr = p.source.FeeTable(ctx, period)
		}
	})
	return entry
}

func (p *periodMemo) ScaleTable(ctx context.Context, period string) ([]ScaleRow, error) {
	entry := p.load(ctx, period)
	return entry.scales, entry.scaleErr
}

func (p *periodMemo) FeeTable(ctx context.Context, period string) ([]FeeComponent, error) {
	entry := p.load(ctx, period)
	return entry.components, entry.feeErr
}
