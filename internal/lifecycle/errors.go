package lifecycle

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/candidate-tracker/internal/types"
)

// ValidationError indicates malformed input rejected before any state mutation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// InvalidTransitionError indicates a transition that is not allowed from the
// candidate's current status, including the loser of a concurrent race.
type InvalidTransitionError struct {
	CandidateID uuid.UUID
	From        types.Status
	To          types.Status
	Reason      string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition for candidate %s: %s -> %s: %s", e.CandidateID, e.From, e.To, e.Reason)
}

// NotFoundError indicates the candidate does not exist.
type NotFoundError struct {
	CandidateID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("candidate not found: %s", e.CandidateID)
}

// ForbiddenError indicates the actor may not perform an administrative operation.
type ForbiddenError struct {
	Actor     string
	Operation string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s is not allowed to %s", e.Actor, e.Operation)
}

// PersistenceError indicates the store failed; the operation was not applied.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
