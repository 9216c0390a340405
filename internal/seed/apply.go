package seed

import (
	"context"
	"errors"
	"fmt"
	"log"

	"estudio/internal/recategorization"
	"estudio/internal/services/period"
)

// Apply creates the fixture's period, or updates it when the code already
// exists, then replaces both tables. With activate set the period becomes the
// active one.
func Apply(ctx context.Context, svc period.Service, f *PeriodFixture, activate bool) error {
	code := f.Period.Code

	_, err := svc.Get(ctx, code)
	switch {
	case errors.Is(err, recategorization.ErrUnknownPeriod):
		if _, err := svc.Create(ctx, f.PeriodInput()); err != nil {
			return fmt.Errorf("create period %s: %w", code, err)
		}
	case err != nil:
		return fmt.Errorf("look up period %s: %w", code, err)
	default:
		if _, err := svc.Update(ctx, code, f.PeriodInput()); err != nil {
			return fmt.Errorf("update period %s: %w", code, err)
		}
		log.Printf("⚠️ Period %s already existed and was overwritten", code)
	}

	if err := svc.ReplaceScales(ctx, code, f.ScaleInputs()); err != nil {
		return fmt.Errorf("replace scales of %s: %w", code, err)
	}
	if err := svc.ReplaceComponents(ctx, code, f.ComponentInputs()); err != nil {
		return fmt.Errorf("replace components of %s: %w", code, err)
	}

	if activate {
		if _, err := svc.Activate(ctx, code); err != nil {
			return fmt.Errorf("activate %s: %w", code, err)
		}
	}
	return nil
}
