// Package memstore is an in-process lifecycle.Repository. A single mutex
// serializes writers, which gives UpdateStatus the same read-check-write
// atomicity the Postgres store gets from row locks.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jonathan/candidate-tracker/internal/lifecycle"
	"github.com/jonathan/candidate-tracker/internal/types"
)

// Store keeps candidates and their audit trail in memory.
type Store struct {
	mu         sync.RWMutex
	candidates map[uuid.UUID]*types.Candidate
	actions    map[uuid.UUID][]types.CandidateAction
}

var _ lifecycle.Repository = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		candidates: make(map[uuid.UUID]*types.Candidate),
		actions:    make(map[uuid.UUID][]types.CandidateAction),
	}
}

// CreateCandidate inserts c together with its screened audit row.
func (s *Store) CreateCandidate(_ context.Context, c *types.Candidate, screened *types.CandidateAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.candidates[c.ID]; exists {
		return &ConflictError{ID: c.ID}
	}
	cp := clone(c)
	s.candidates[c.ID] = &cp
	s.actions[c.ID] = append(s.actions[c.ID], *screened)
	return nil
}

// GetCandidate returns a copy of the candidate, or nil, nil if absent.
func (s *Store) GetCandidate(_ context.Context, id uuid.UUID) (*types.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.candidates[id]
	if !ok {
		return nil, nil
	}
	cp := clone(c)
	return &cp, nil
}

// ListCandidates returns matching candidates, newest first.
func (s *Store) ListCandidates(_ context.Context, filter lifecycle.ListFilter) ([]types.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Candidate, 0, len(s.candidates))
	for _, c := range s.candidates {
		if !matches(c, filter) {
			continue
		}
		out = append(out, clone(c))
	}
	sortNewestFirst(out)
	limit := filter.Limit
	if limit == 0 {
		limit = lifecycle.DefaultListLimit
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FindCandidatesByEmail matches email case-insensitively.
func (s *Store) FindCandidatesByEmail(_ context.Context, email string) ([]types.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := strings.ToLower(strings.TrimSpace(email))
	var out []types.Candidate
	for _, c := range s.candidates {
		if strings.ToLower(strings.TrimSpace(c.Email)) == want {
			out = append(out, clone(c))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// UpdateStatus applies a guarded status change and appends its audit row.
func (s *Store) UpdateStatus(_ context.Context, update lifecycle.StatusUpdate) (*types.Candidate, *types.CandidateAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.candidates[update.CandidateID]
	if !ok {
		return nil, nil, &lifecycle.NotFoundError{CandidateID: update.CandidateID}
	}
	if update.Check != nil {
		if err := update.Check(c.Status); err != nil {
			return nil, nil, err
		}
	}

	action := update.Action
	action.CandidateID = c.ID
	action.PreviousStatus = c.Status
	action.NewStatus = update.NewStatus

	c.Status = update.NewStatus
	c.UpdatedAt = update.UpdatedAt
	if update.Comment != "" {
		c.ActionComment = update.Comment
	}
	s.actions[c.ID] = append(s.actions[c.ID], action)

	cp := clone(c)
	return &cp, &action, nil
}

// DeleteCandidate removes the candidate and appends record. The audit trail is kept.
func (s *Store) DeleteCandidate(_ context.Context, id uuid.UUID, record *types.CandidateAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.candidates[id]
	if !ok {
		return &lifecycle.NotFoundError{CandidateID: id}
	}
	record.CandidateID = id
	record.PreviousStatus = c.Status
	delete(s.candidates, id)
	s.actions[id] = append(s.actions[id], *record)
	return nil
}

// ListActions returns the audit trail for a candidate, newest first.
func (s *Store) ListActions(_ context.Context, candidateID uuid.UUID) ([]types.CandidateAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trail := s.actions[candidateID]
	out := make([]types.CandidateAction, len(trail))
	for i := range trail {
		out[len(trail)-1-i] = trail[i]
	}
	return out, nil
}

// Len returns the number of stored candidates.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.candidates)
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}

// ConflictError is returned when a candidate id is inserted twice.
type ConflictError struct {
	ID uuid.UUID
}

func (e *ConflictError) Error() string {
	return "candidate already exists: " + e.ID.String()
}

func matches(c *types.Candidate, f lifecycle.ListFilter) bool {
	if len(f.Statuses) > 0 {
		found := false
		for _, st := range f.Statuses {
			if c.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Role != "" && !strings.EqualFold(strings.TrimSpace(c.Role), strings.TrimSpace(f.Role)) {
		return false
	}
	if f.FitCategory != "" && c.FitCategory != f.FitCategory {
		return false
	}
	return true
}

func sortNewestFirst(cs []types.Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].ScreenedAt.Equal(cs[j].ScreenedAt) {
			return cs[i].ID.String() < cs[j].ID.String()
		}
		return cs[i].ScreenedAt.After(cs[j].ScreenedAt)
	})
}

func clone(c *types.Candidate) types.Candidate {
	cp := *c
	cp.Strengths = append([]string(nil), c.Strengths...)
	cp.Gaps = append([]string(nil), c.Gaps...)
	return cp
}
