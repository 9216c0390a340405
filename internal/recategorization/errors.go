package recategorization

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Service errors
var (
	ErrConfiguration = errors.New("recategorization configuration error")
	ErrInvalidInput  = errors.New("invalid client metrics")

	// ErrUnknownPeriod is returned by Tables sources when the period does not
	// exist. The engine reports it as a ConfigError of kind KindMissingPeriod.
	ErrUnknownPeriod = errors.New("unknown period")
)

// ConfigKind classifies configuration errors.
type ConfigKind string

const (
	KindMissingPeriod    ConfigKind = "missing_period"
	KindMissingScale     ConfigKind = "missing_scale"
	KindInvalidScale     ConfigKind = "invalid_scale"
	KindMissingComponent ConfigKind = "missing_component"
	KindInvalidComponent ConfigKind = "invalid_component"
)

// ConfigError reports missing or inconsistent period configuration. These are
// never defaulted: a wrong category or fee has financial consequences.
type ConfigError struct {
	Period   string
	Kind     ConfigKind
	Category Category
	Detail   string
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", e.Kind)
	if e.Period != "" {
		fmt.Fprintf(&b, " (period=%s", e.Period)
		if e.Category != "" {
			fmt.Fprintf(&b, ", category=%s", e.Category)
		}
		b.WriteString(")")
	} else if e.Category != "" {
		fmt.Fprintf(&b, " (category=%s)", e.Category)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// InputError lists the offending ClientMetrics fields.
type InputError struct {
	ClientID string
	Fields   map[string]string
}

func (e *InputError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	msg := ErrInvalidInput.Error()
	if e.ClientID != "" {
		msg += " for client " + e.ClientID
	}
	return msg + ": " + strings.Join(parts, "; ")
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// withPeriod stamps the period on a ConfigError that does not carry one yet.
func withPeriod(err error, period string) error {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) && cfgErr.Period == "" {
		cfgErr.Period = period
	}
	return err
}
