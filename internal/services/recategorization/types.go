package recategorization

import (
	"time"

	appErrors "estudio/internal/errors"
	"estudio/internal/models"
	recat "estudio/internal/recategorization"

	"github.com/shopspring/decimal"
)

// Outcome statuses
const (
	StatusOK         = "ok"
	StatusOutOfRange = "out_of_range"
	StatusError      = "error"
)

// PeriodView is the part of a period a report shows.
type PeriodView struct {
	Code      string    `json:"code"`
	SalesFrom time.Time `json:"sales_from"`
	SalesTo   time.Time `json:"sales_to"`
	FeeFrom   time.Time `json:"fee_from"`
	FeeTo     time.Time `json:"fee_to"`
}

func periodView(p *models.Period) PeriodView {
	return PeriodView{
		Code:      p.Code,
		SalesFrom: p.SalesFrom,
		SalesTo:   p.SalesTo,
		FeeFrom:   p.FeeFrom,
		FeeTo:     p.FeeTo,
	}
}

// ClientView identifies a client on reports.
type ClientView struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	TaxID string `json:"tax_id"`
}

func clientView(c *models.Client) ClientView {
	return ClientView{ID: c.ID, Name: c.Name, TaxID: c.TaxID}
}

// ClientReport is the data behind a client's recategorization report.
type ClientReport struct {
	Period      PeriodView      `json:"period"`
	Client      ClientView      `json:"client"`
	Sales       decimal.Decimal `json:"sales"`
	Purchases   decimal.Decimal `json:"purchases"`
	Result      *recat.Result   `json:"result"`
	NeedsReview bool            `json:"needs_review"`
}

// OutcomeView is one row of a batch or listing response. Error is set instead
// of Result when the client could not be recategorized.
type OutcomeView struct {
	ClientID    uint                   `json:"client_id"`
	ClientName  string                 `json:"client_name,omitempty"`
	Status      string                 `json:"status"`
	NeedsReview bool                   `json:"needs_review"`
	Result      *recat.Result          `json:"result,omitempty"`
	Error       *appErrors.DomainError `json:"error,omitempty"`
}

// Summary counts the outcomes of a batch.
type Summary struct {
	Total          int   `json:"total"`
	Succeeded      int   `json:"succeeded"`
	OutOfRange     int   `json:"out_of_range"`
	NeedsReview    int   `json:"needs_review"`
	ConfigErrors   int   `json:"config_errors"`
	InputErrors    int   `json:"input_errors"`
	NotFound       int   `json:"not_found"`
	OtherErrors    int   `json:"other_errors"`
	ProcessingTime int64 `json:"processing_time_ms"`
}

// BatchResult is the response of a batch run or a period listing.
type BatchResult struct {
	BatchID  string        `json:"batch_id"`
	Period   PeriodView    `json:"period"`
	Outcomes []OutcomeView `json:"outcomes"`
	Summary  Summary       `json:"summary"`
}
