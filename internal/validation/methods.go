package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Validator collects field errors
type Validator struct {
	Errors map[string]string
}

// New creates a new validator
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid checks if there are any validation errors
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError records an error for a field. The first error for a field wins.
func (v *Validator) AddError(field, message string) {
	if _, exists := v.Errors[field]; !exists {
		v.Errors[field] = message
	}
}

// Check adds an error if the condition is false
func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.AddError(field, message)
	}
}

// Required checks if a value is present
func (v *Validator) Required(field string, value interface{}) {
	if value == nil {
		v.AddError(field, "must not be nil")
		return
	}

	switch val := value.(type) {
	case string:
		v.Check(strings.TrimSpace(val) != "", field, "must not be empty")
	case []string:
		v.Check(len(val) > 0, field, "must contain at least one item")
	case int:
		v.Check(val != 0, field, "must not be zero")
	case uint:
		v.Check(val != 0, field, "must not be zero")
	case time.Time:
		v.Check(!val.IsZero(), field, "must be set")
	}
}

// MaxLength checks if a string has at most n characters
func (v *Validator) MaxLength(field string, value string, n int) {
	v.Check(len(value) <= n, field, fmt.Sprintf("must not be more than %d characters long", n))
}

// NonNegative checks that an amount is zero or positive
func (v *Validator) NonNegative(field string, value decimal.Decimal) {
	v.Check(!value.IsNegative(), field, "must not be negative")
}

// NonNegativeInt checks that a count is zero or positive
func (v *Validator) NonNegativeInt(field string, value int) {
	v.Check(value >= 0, field, "must not be negative")
}

// OneOf checks that value is in the allowed set
func (v *Validator) OneOf(field, value string, allowed ...string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.AddError(field, fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")))
}

// DateRange checks that from is not after to
func (v *Validator) DateRange(field string, from, to time.Time) {
	v.Check(!from.After(to), field, "start must not be after end")
}

// Err returns the collected errors as an *Error, or nil when valid.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	return &Error{Fields: v.Errors}
}
