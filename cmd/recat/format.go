package main

import (
	"fmt"
	"strings"

	"estudio/internal/recategorization"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen, color.Bold).SprintFunc()
	red    = color.New(color.FgRed, color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow, color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

// changeLabel colors a category change. Upgrades cost the client more.
func changeLabel(c recategorization.Change) string {
	switch c {
	case recategorization.ChangeUpgraded:
		return red("▲ " + string(c))
	case recategorization.ChangeDowngraded:
		return green("▼ " + string(c))
	case recategorization.ChangeOutOfRange:
		return red("✗ " + string(c))
	case recategorization.ChangeNewlyAssigned:
		return cyan("● " + string(c))
	default:
		return string(c)
	}
}

func formatOutcome(o recategorization.Outcome) string {
	var b strings.Builder

	if o.Err != nil {
		fmt.Fprintf(&b, "%s %s: %v\n", red("✗"), o.ClientID, o.Err)
		return b.String()
	}

	r := o.Result
	if r.OutOfRange != nil {
		fmt.Fprintf(&b, "%s %s: %s (%s %s exceeds %s)\n", red("✗"), r.ClientID,
			changeLabel(r.Change), r.OutOfRange.Dimension,
			r.OutOfRange.Value.StringFixed(2), r.OutOfRange.Limit.StringFixed(2))
		return b.String()
	}

	previous := "-"
	if r.PreviousCategory != "" {
		previous = string(r.PreviousCategory)
	}
	fmt.Fprintf(&b, "%s %s: %s → %s %s\n", green("✓"), r.ClientID, previous, r.Category, changeLabel(r.Change))
	fmt.Fprintf(&b, "    billable income %s\n", r.BillableIncome.StringFixed(2))

	for _, l := range r.Fee.Lines {
		name := string(l.Type)
		if l.Province != "" {
			name += " " + l.Province
		}
		if l.Status == recategorization.LineCharged {
			fmt.Fprintf(&b, "    %-22s %14s\n", name, l.Amount.StringFixed(2))
		} else {
			fmt.Fprintf(&b, "    %-22s %14s\n", name, string(l.Status))
		}
	}
	fmt.Fprintf(&b, "    %-22s %14s\n", "total", r.Fee.Total.StringFixed(2))
	if r.FeeDelta.Valid {
		fmt.Fprintf(&b, "    %-22s %14s\n", "delta", r.FeeDelta.Decimal.StringFixed(2))
	}

	for _, note := range r.Review {
		fmt.Fprintf(&b, "    %s %s\n", yellow("review:"), note)
	}
	return b.String()
}

type outcomeJSON struct {
	ClientID string                   `json:"client_id"`
	Period   string                   `json:"period"`
	Result   *recategorization.Result `json:"result,omitempty"`
	Error    string                   `json:"error,omitempty"`
}

func jsonOutcomes(outcomes []recategorization.Outcome) []outcomeJSON {
	out := make([]outcomeJSON, 0, len(outcomes))
	for _, o := range outcomes {
		j := outcomeJSON{ClientID: o.ClientID, Period: o.Period, Result: o.Result}
		if o.Err != nil {
			j.Error = o.Err.Error()
		}
		out = append(out, j)
	}
	return out
}
