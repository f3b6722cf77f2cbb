package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/candidate-tracker/internal/types"
)

// Repository is the persistence collaborator. Implementations must make
// UpdateStatus and DeleteCandidate atomic: the status read, the check, the
// write and the audit append either all happen or none do.
type Repository interface {
	// CreateCandidate inserts c together with its screened audit row.
	CreateCandidate(ctx context.Context, c *types.Candidate, screened *types.CandidateAction) error
	// GetCandidate returns nil, nil when the candidate does not exist.
	GetCandidate(ctx context.Context, id uuid.UUID) (*types.Candidate, error)
	ListCandidates(ctx context.Context, filter ListFilter) ([]types.Candidate, error)
	// FindCandidatesByEmail matches email case-insensitively.
	FindCandidatesByEmail(ctx context.Context, email string) ([]types.Candidate, error)
	// UpdateStatus locks the candidate, runs update.Check against the current
	// status and, if it passes, applies the change and appends update.Action
	// with PreviousStatus and NewStatus filled in. A missing candidate yields
	// *NotFoundError; a failed check returns the check's error unchanged.
	UpdateStatus(ctx context.Context, update StatusUpdate) (*types.Candidate, *types.CandidateAction, error)
	// DeleteCandidate removes the candidate and appends record, with
	// PreviousStatus set to the status at deletion, in the same transaction.
	DeleteCandidate(ctx context.Context, id uuid.UUID, record *types.CandidateAction) error
	// ListActions returns a candidate's audit trail, newest first.
	ListActions(ctx context.Context, candidateID uuid.UUID) ([]types.CandidateAction, error)
}

// Listing limits. A zero Limit means DefaultListLimit; NoLimit returns every match.
const (
	DefaultListLimit = 200
	NoLimit          = -1
)

// ListFilter holds optional filters for listing candidates.
type ListFilter struct {
	Statuses    []types.Status
	Role        string
	FitCategory types.FitCategory
	Limit       int
}

// StatusUpdate describes a guarded status change.
type StatusUpdate struct {
	CandidateID uuid.UUID
	NewStatus   types.Status
	// Comment replaces actionComment when non-empty.
	Comment   string
	UpdatedAt time.Time
	Check     func(current types.Status) error
	Action    types.CandidateAction
}
