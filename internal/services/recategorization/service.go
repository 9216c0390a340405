// Package recategorization runs the recategorization engine for a studio's
// clients: single reports, batches and whole-period listings.
package recategorization

import (
	"cmp"
	"context"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	appErrors "estudio/internal/errors"
	"estudio/internal/models"
	recat "estudio/internal/recategorization"
	"estudio/internal/repositories"
	"estudio/internal/validation"

	"github.com/google/uuid"
)

// Service defines the recategorization interface. Every method takes the
// studio's tenant schema and an explicit period code.
type Service interface {
	Report(ctx context.Context, schema, period string, clientID uint) (*ClientReport, error)
	Batch(ctx context.Context, schema, period string, clientIDs []uint) (*BatchResult, error)
	Listing(ctx context.Context, schema, period string) (*BatchResult, error)
}

// PeriodLookup resolves period codes.
type PeriodLookup interface {
	GetByCode(ctx context.Context, code string) (*models.Period, error)
}

type service struct {
	engine  *recat.Engine
	periods PeriodLookup
	clients repositories.ClientRepository
	workers int
}

// NewService creates a new recategorization service. workers bounds the batch
// worker pool; zero uses the engine default.
func NewService(engine *recat.Engine, periods PeriodLookup, clients repositories.ClientRepository, workers int) Service {
	if engine == nil {
		panic("engine is required")
	}
	if periods == nil {
		panic("period lookup is required")
	}
	if clients == nil {
		panic("client repository is required")
	}
	return &service{engine: engine, periods: periods, clients: clients, workers: workers}
}

func (s *service) Report(ctx context.Context, schema, period string, clientID uint) (*ClientReport, error) {
	if err := repositories.ValidateTenant(schema); err != nil {
		return nil, err
	}
	p, err := s.periods.GetByCode(ctx, period)
	if err != nil {
		return nil, err
	}

	found, err := s.clients.MetricsFor(ctx, schema, []uint{clientID}, p)
	if err != nil {
		return nil, err
	}
	cm, ok := found[clientID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", repositories.ErrClientNotFound, clientID)
	}

	result, err := s.engine.Recategorize(ctx, p.Code, cm.Metrics)
	if err != nil {
		return nil, err
	}

	return &ClientReport{
		Period:      periodView(p),
		Client:      clientView(&cm.Client),
		Sales:       cm.Metrics.Sales,
		Purchases:   cm.Metrics.Purchases,
		Result:      result,
		NeedsReview: result.NeedsReview(),
	}, nil
}

func (s *service) Batch(ctx context.Context, schema, period string, clientIDs []uint) (*BatchResult, error) {
	v := validation.New()
	v.Check(len(clientIDs) > 0, "client_ids", "must contain at least one client")
	v.Check(len(clientIDs) <= validation.MaxBatchClients, "client_ids",
		fmt.Sprintf("must not contain more than %d clients", validation.MaxBatchClients))
	for i, id := range clientIDs {
		v.Check(id != 0, fmt.Sprintf("client_ids[%d]", i), "must not be zero")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	return s.run(ctx, schema, period, clientIDs)
}

func (s *service) Listing(ctx context.Context, schema, period string) (*BatchResult, error) {
	return s.run(ctx, schema, period, nil)
}

// run recategorizes the given clients, or every client when ids is nil.
// Outcomes keep the order of ids; a listing is ordered by client name.
func (s *service) run(ctx context.Context, schema, period string, ids []uint) (*BatchResult, error) {
	start := time.Now()
	if err := repositories.ValidateTenant(schema); err != nil {
		return nil, err
	}
	p, err := s.periods.GetByCode(ctx, period)
	if err != nil {
		return nil, err
	}

	found, err := s.clients.MetricsFor(ctx, schema, ids, p)
	if err != nil {
		return nil, err
	}

	if ids == nil {
		ids = make([]uint, 0, len(found))
		for id := range found {
			ids = append(ids, id)
		}
		slices.SortFunc(ids, func(a, b uint) int {
			if c := strings.Compare(found[a].Client.Name, found[b].Client.Name); c != 0 {
				return c
			}
			return cmp.Compare(a, b)
		})
	}

	items := make([]recat.BatchItem, 0, len(found))
	slot := make([]int, len(ids))
	for i, id := range ids {
		cm, ok := found[id]
		if !ok {
			slot[i] = -1
			continue
		}
		slot[i] = len(items)
		items = append(items, recat.BatchItem{Period: p.Code, Metrics: cm.Metrics})
	}

	report := s.engine.RecategorizeBatch(ctx, items, recat.BatchOptions{Workers: s.workers})

	result := &BatchResult{
		BatchID:  uuid.New().String(),
		Period:   periodView(p),
		Outcomes: make([]OutcomeView, len(ids)),
	}
	for i, id := range ids {
		var view OutcomeView
		if slot[i] < 0 {
			view = errorView(id, "", fmt.Errorf("%w: %d", repositories.ErrClientNotFound, id))
		} else {
			cm := found[id]
			view = outcomeView(id, cm.Client.Name, report.Outcomes[slot[i]])
		}
		result.Outcomes[i] = view
		result.Summary.add(view)
	}
	result.Summary.ProcessingTime = time.Since(start).Milliseconds()

	log.Printf("✅ Recategorized %d clients of %s for period %s (%d ok, %d out of range, %d failed)",
		result.Summary.Total, schema, p.Code,
		result.Summary.Succeeded, result.Summary.OutOfRange, result.Summary.failed())
	return result, nil
}

func outcomeView(id uint, name string, out recat.Outcome) OutcomeView {
	if out.Err != nil {
		return errorView(id, name, out.Err)
	}
	status := StatusOK
	if out.Result.Change == recat.ChangeOutOfRange {
		status = StatusOutOfRange
	}
	return OutcomeView{
		ClientID:    id,
		ClientName:  name,
		Status:      status,
		NeedsReview: out.Result.NeedsReview(),
		Result:      out.Result,
	}
}

func errorView(id uint, name string, err error) OutcomeView {
	_, body := appErrors.Describe(err)
	if body == appErrors.ErrInternal {
		log.Printf("⚠️ Recategorization of client %d failed: %v", id, err)
	}
	return OutcomeView{
		ClientID:   id,
		ClientName: name,
		Status:     StatusError,
		Error:      body,
	}
}

func (s *Summary) add(v OutcomeView) {
	s.Total++
	if v.NeedsReview {
		s.NeedsReview++
	}
	switch {
	case v.Status == StatusOK:
		s.Succeeded++
	case v.Status == StatusOutOfRange:
		s.OutOfRange++
	case v.Error.Code == appErrors.CodeConfiguration, v.Error.Code == appErrors.CodePeriodNotFound:
		s.ConfigErrors++
	case v.Error.Code == appErrors.CodeInvalidInput:
		s.InputErrors++
	case v.Error.Code == appErrors.CodeClientNotFound:
		s.NotFound++
	default:
		s.OtherErrors++
	}
}

func (s *Summary) failed() int {
	return s.ConfigErrors + s.InputErrors + s.NotFound + s.OtherErrors
}
