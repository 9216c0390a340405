// Package errors defines the error envelope returned by the HTTP layer and
// maps domain errors onto it.
package errors

// DomainError is the JSON error body sent to API clients.
type DomainError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// Error codes
const (
	CodeInvalidInput    = "INVALID_INPUT"
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeConfiguration   = "CONFIGURATION_ERROR"
	CodePeriodNotFound  = "PERIOD_NOT_FOUND"
	CodeClientNotFound  = "CLIENT_NOT_FOUND"
	CodeDuplicatePeriod = "DUPLICATE_PERIOD"
	CodeInvalidTenant   = "INVALID_TENANT"
	CodeCancelled       = "CANCELLED"
	CodeInternal        = "INTERNAL_ERROR"
)

var (
	ErrInternal = &DomainError{
		Code:    CodeInternal,
		Message: "internal error",
	}
	ErrCancelled = &DomainError{
		Code:    CodeCancelled,
		Message: "request cancelled",
	}
)
