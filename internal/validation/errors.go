package validation

import (
	"errors"
	"sort"
	"strings"
)

var ErrValidation = errors.New("validation failed")

// Error carries one message per offending field.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *Error) Unwrap() error {
	return ErrValidation
}
