// Package bulk applies one lifecycle action to many candidates.
package bulk

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/candidate-tracker/internal/lifecycle"
	"github.com/jonathan/candidate-tracker/internal/logger"
	"github.com/jonathan/candidate-tracker/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the number of items processed at once.
const DefaultConcurrency = 4

// Action is a bulk operation.
type Action string

// Action constants
const (
	ActionInvite Action = "invite"
	ActionReject Action = "reject"
	ActionDelete Action = "delete"
)

// Lifecycle is the subset of lifecycle.Service the coordinator drives.
type Lifecycle interface {
	Invite(ctx context.Context, id uuid.UUID, comment, actor string) (*lifecycle.Outcome, error)
	Reject(ctx context.Context, id uuid.UUID, comment, actor string) (*lifecycle.Outcome, error)
	Delete(ctx context.Context, id uuid.UUID, actor string) error
}

// Request describes one bulk run.
type Request struct {
	IDs     []uuid.UUID
	Action  Action
	Comment string
	Actor   string
}

// ItemResult is the outcome for a single candidate.
type ItemResult struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	Warning     string    `json:"warning,omitempty"`
}

// Result summarizes a bulk run. Items follow the order of the de-duplicated input.
type Result struct {
	SuccessCount int          `json:"success_count"`
	FailureCount int          `json:"failure_count"`
	Items        []ItemResult `json:"items"`
}

// Coordinator runs bulk requests against the lifecycle.
type Coordinator struct {
	lifecycle   Lifecycle
	concurrency int
	logger      *zap.Logger
}

// NewCoordinator creates a coordinator. concurrency <= 0 selects DefaultConcurrency.
func NewCoordinator(lc Lifecycle, concurrency int, logger *zap.Logger) *Coordinator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{lifecycle: lc, concurrency: concurrency, logger: logger}
}

// Apply processes every id independently. A failing item never aborts its
// siblings and successful items are never rolled back. The only error returned
// is for an unknown action, before any work starts.
func (c *Coordinator) Apply(ctx context.Context, req Request) (*Result, error) {
	switch req.Action {
	case ActionInvite, ActionReject, ActionDelete:
	default:
		return nil, &lifecycle.ValidationError{Field: "action", Message: fmt.Sprintf("unknown bulk action %q", req.Action)}
	}

	ids := snapshot(req.IDs)
	actor := req.Actor
	if actor == "" {
		actor = types.ActorBulk
	}

	items := make([]ItemResult, len(ids))
	g := new(errgroup.Group)
	g.SetLimit(c.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			items[i] = c.applyOne(ctx, req.Action, id, req.Comment, actor)
			return nil
		})
	}
	_ = g.Wait()

	res := &Result{Items: items}
	for _, it := range items {
		if it.Success {
			res.SuccessCount++
		} else {
			res.FailureCount++
		}
	}

	c.logger.Info("bulk action completed",
		zap.String("action", string(req.Action)),
		zap.Int("requested", len(req.IDs)),
		zap.Int("succeeded", res.SuccessCount),
		zap.Int("failed", res.FailureCount),
	)
	return res, nil
}

func (c *Coordinator) applyOne(ctx context.Context, action Action, id uuid.UUID, comment, actor string) (item ItemResult) {
	item.CandidateID = id
	defer func() {
		if r := recover(); r != nil {
			item.Success = false
			item.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		item.Error = err.Error()
		return item
	}

	var (
		out *lifecycle.Outcome
		err error
	)
	switch action {
	case ActionInvite:
		out, err = c.lifecycle.Invite(ctx, id, comment, actor)
	case ActionReject:
		out, err = c.lifecycle.Reject(ctx, id, comment, actor)
	case ActionDelete:
		err = c.lifecycle.Delete(ctx, id, actor)
	}
	if err != nil {
		c.logger.Warn("bulk item failed",
			zap.String(logger.FieldCandidateID, id.String()),
			zap.String("action", string(action)),
			zap.Error(err),
		)
		item.Error = err.Error()
		return item
	}

	item.Success = true
	if out != nil {
		item.Warning = out.Warning
	}
	return item
}

// snapshot copies ids, dropping repeats and keeping first-seen order, so that
// later changes to the caller's selection cannot affect the run.
func snapshot(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
