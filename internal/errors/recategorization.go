package errors

import (
	"context"
	stderrors "errors"
	"net/http"

	"estudio/internal/recategorization"
	"estudio/internal/repositories"
	"estudio/internal/validation"
)

// Describe maps err onto an HTTP status and an error body. Unknown errors
// become a generic 500 so internal details never reach the client.
func Describe(err error) (int, *DomainError) {
	var (
		domainErr *DomainError
		inputErr  *recategorization.InputError
		cfgErr    *recategorization.ConfigError
		validErr  *validation.Error
	)

	switch {
	case err == nil:
		return http.StatusOK, nil

	case stderrors.As(err, &domainErr):
		return http.StatusBadRequest, domainErr

	case stderrors.As(err, &inputErr):
		return http.StatusBadRequest, &DomainError{
			Code:    CodeInvalidInput,
			Message: "client data is not valid for recategorization",
			Fields:  inputErr.Fields,
		}

	case stderrors.As(err, &validErr):
		return http.StatusBadRequest, &DomainError{
			Code:    CodeInvalidRequest,
			Message: "request is not valid",
			Fields:  validErr.Fields,
		}

	case stderrors.As(err, &cfgErr) && cfgErr.Kind == recategorization.KindMissingPeriod,
		stderrors.Is(err, repositories.ErrPeriodNotFound):
		return http.StatusNotFound, &DomainError{Code: CodePeriodNotFound, Message: "period not found"}

	case cfgErr != nil:
		return http.StatusUnprocessableEntity, &DomainError{
			Code:    CodeConfiguration,
			Message: cfgErr.Error(),
			Fields:  map[string]string{"kind": string(cfgErr.Kind)},
		}

	case stderrors.Is(err, repositories.ErrClientNotFound):
		return http.StatusNotFound, &DomainError{Code: CodeClientNotFound, Message: "client not found"}

	case stderrors.Is(err, repositories.ErrDuplicatePeriod):
		return http.StatusConflict, &DomainError{Code: CodeDuplicatePeriod, Message: "period code already exists"}

	case stderrors.Is(err, repositories.ErrInvalidTenant):
		return http.StatusForbidden, &DomainError{Code: CodeInvalidTenant, Message: "no studio schema in credentials"}

	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, ErrCancelled

	default:
		return http.StatusInternalServerError, ErrInternal
	}
}
