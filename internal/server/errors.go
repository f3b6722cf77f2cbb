package server

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/candidate-tracker/internal/lifecycle"
	"github.com/jonathan/candidate-tracker/internal/scoring"
	"github.com/jonathan/candidate-tracker/internal/screening"
)

// ErrBadRequest indicates a request body or parameter that could not be parsed.
type ErrBadRequest struct {
	Message string
}

func (e *ErrBadRequest) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	var (
		badRequest   *ErrBadRequest
		validation   *lifecycle.ValidationError
		validatorErr validator.ValidationErrors
		notFound     *lifecycle.NotFoundError
		forbidden    *lifecycle.ForbiddenError
		transition   *lifecycle.InvalidTransitionError
		invalidScore *scoring.InvalidScoringResponseError
		unavailable  *scoring.UnavailableError
		persistence  *lifecycle.PersistenceError
	)
	switch {
	case errors.As(err, &badRequest), errors.As(err, &validation), errors.As(err, &validatorErr):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &transition):
		return http.StatusConflict
	case errors.As(err, &invalidScore), errors.As(err, &unavailable):
		return http.StatusBadGateway
	case errors.As(err, &persistence), errors.Is(err, screening.ErrScoringDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
