package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/candidate-tracker/internal/lifecycle"
	"github.com/jonathan/candidate-tracker/internal/scoring"
	"github.com/jonathan/candidate-tracker/internal/screening"
	"github.com/jonathan/candidate-tracker/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad request", &ErrBadRequest{Message: "bad json"}, http.StatusBadRequest},
		{"validation", &lifecycle.ValidationError{Field: "email", Message: "is required"}, http.StatusBadRequest},
		{"validator", validator.ValidationErrors{}, http.StatusBadRequest},
		{"not found", &lifecycle.NotFoundError{CandidateID: id}, http.StatusNotFound},
		{"forbidden", &lifecycle.ForbiddenError{Actor: "alice", Operation: "reopen candidates"}, http.StatusForbidden},
		{"invalid transition", &lifecycle.InvalidTransitionError{CandidateID: id, From: types.StatusRejected, To: types.StatusInvited}, http.StatusConflict},
		{"invalid scoring response", fmt.Errorf("failed to score submission: %w", &scoring.InvalidScoringResponseError{Reason: "bad"}), http.StatusBadGateway},
		{"scorer unavailable", fmt.Errorf("failed to score submission: %w", &scoring.UnavailableError{Scorer: "webhook", Err: errors.New("timeout")}), http.StatusBadGateway},
		{"persistence", &lifecycle.PersistenceError{Op: "list candidates", Err: errors.New("conn refused")}, http.StatusServiceUnavailable},
		{"scoring disabled", screening.ErrScoringDisabled, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
