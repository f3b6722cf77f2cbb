// Package lifecycle owns candidate status transitions and the audit trail.
//
// Pending and Review are open statuses; Invited and Rejected are terminal.
// Open candidates move to a terminal status through Invite / Reject, Pending
// moves to Review through MarkReviewed, and terminal candidates only leave
// through Reopen, an administrative override that is disabled by default.
// Every change is written together with exactly one CandidateAction.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/candidate-tracker/internal/logger"
	"github.com/jonathan/candidate-tracker/internal/notify"
	"github.com/jonathan/candidate-tracker/internal/types"
	"go.uber.org/zap"
)

// Policy configures optional lifecycle behavior.
type Policy struct {
	AllowReopen   bool          `mapstructure:"allow_reopen"`
	NotifyTimeout time.Duration `mapstructure:"notify_timeout"`
}

// Service is the candidate state machine. It is the only writer of audit records.
type Service struct {
	repo     Repository
	notifier notify.Dispatcher
	policy   Policy
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a lifecycle service. notifier and logger may be nil.
func NewService(repo Repository, notifier notify.Dispatcher, policy Policy, logger *zap.Logger) *Service {
	if policy.NotifyTimeout <= 0 {
		policy.NotifyTimeout = notify.DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		policy:   policy,
		logger:   logger,
		now:      time.Now,
	}
}

// NewCandidate is a classified, duplicate-checked submission ready to persist.
type NewCandidate struct {
	Name              string
	Email             string
	Role              string
	FitScore          int
	FitCategory       types.FitCategory
	Status            types.Status
	IsDuplicate       bool
	DuplicateInfo     string
	ResumeText        string
	JobDescription    string
	ScreeningSummary  string
	Strengths         []string
	Gaps              []string
	RecommendedAction types.RecommendedAction
	Actor             string
}

// Outcome is the result of a state-changing operation.
// Notification is nil when no notification was due. Warning is set when the
// change was committed but the notification was not confirmed.
type Outcome struct {
	Candidate    *types.Candidate       `json:"candidate"`
	Action       *types.CandidateAction `json:"action"`
	Notification *notify.Result         `json:"notification,omitempty"`
	Warning      string                 `json:"warning,omitempty"`
}

// TransitionRequest asks to move an open candidate to Invited or Rejected.
type TransitionRequest struct {
	CandidateID uuid.UUID
	To          types.Status
	Comment     string
	Actor       string
}

// ReopenRequest asks to return a terminal candidate to Review.
type ReopenRequest struct {
	CandidateID uuid.UUID
	Comment     string
	Actor       string
	Admin       bool
}

func (n *NewCandidate) validate() error {
	switch {
	case strings.TrimSpace(n.Name) == "":
		return &ValidationError{Field: "name", Message: "is required"}
	case strings.TrimSpace(n.Email) == "":
		return &ValidationError{Field: "email", Message: "is required"}
	case strings.TrimSpace(n.Role) == "":
		return &ValidationError{Field: "role", Message: "is required"}
	case n.FitScore < 0 || n.FitScore > 100:
		return &ValidationError{Field: "fit_score", Message: fmt.Sprintf("must be between 0 and 100, got %d", n.FitScore)}
	case n.FitCategory.Rank() < 0:
		return &ValidationError{Field: "fit_category", Message: fmt.Sprintf("unknown category %q", n.FitCategory)}
	case !n.Status.Valid():
		return &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", n.Status)}
	case n.RecommendedAction != "" && !n.RecommendedAction.Valid():
		return &ValidationError{Field: "recommended_action", Message: fmt.Sprintf("unknown action %q", n.RecommendedAction)}
	}
	return nil
}

// Create persists a new candidate with its screened audit row. The initial
// status is state at creation, not a transition: exactly one audit row is
// written. If that status is terminal one notification is attempted.
func (s *Service) Create(ctx context.Context, in NewCandidate) (*Outcome, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	c := &types.Candidate{
		ID:                uuid.New(),
		Name:              strings.TrimSpace(in.Name),
		Email:             strings.TrimSpace(in.Email),
		Role:              strings.TrimSpace(in.Role),
		FitScore:          in.FitScore,
		FitCategory:       in.FitCategory,
		Status:            in.Status,
		ScreenedAt:        now,
		UpdatedAt:         now,
		IsDuplicate:       in.IsDuplicate,
		DuplicateInfo:     in.DuplicateInfo,
		ResumeText:        in.ResumeText,
		JobDescription:    in.JobDescription,
		ScreeningSummary:  in.ScreeningSummary,
		Strengths:         in.Strengths,
		Gaps:              in.Gaps,
		RecommendedAction: in.RecommendedAction,
	}
	action := &types.CandidateAction{
		ID:          uuid.New(),
		CandidateID: c.ID,
		ActionType:  types.ActionScreened,
		NewStatus:   c.Status,
		Actor:       actorOrDefault(in.Actor),
		CreatedAt:   now,
	}

	if err := s.repo.CreateCandidate(ctx, c, action); err != nil {
		return nil, &PersistenceError{Op: "create candidate", Err: err}
	}

	s.logger.Info("candidate screened",
		zap.String(logger.FieldCandidateID, c.ID.String()),
		zap.String("role", c.Role),
		zap.Int("fit_score", c.FitScore),
		zap.String(logger.FieldStatus, string(c.Status)),
		zap.Bool("duplicate", c.IsDuplicate),
	)

	out := &Outcome{Candidate: c, Action: action}
	s.notifyTerminal(ctx, out)
	return out, nil
}

// Invite moves an open candidate to Invited.
func (s *Service) Invite(ctx context.Context, id uuid.UUID, comment, actor string) (*Outcome, error) {
	return s.Transition(ctx, TransitionRequest{CandidateID: id, To: types.StatusInvited, Comment: comment, Actor: actor})
}

// Reject moves an open candidate to Rejected.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, comment, actor string) (*Outcome, error) {
	return s.Transition(ctx, TransitionRequest{CandidateID: id, To: types.StatusRejected, Comment: comment, Actor: actor})
}

// Transition moves an open candidate to a terminal status, then dispatches the
// matching notification without holding any lock.
func (s *Service) Transition(ctx context.Context, req TransitionRequest) (*Outcome, error) {
	var actionType types.ActionType
	switch req.To {
	case types.StatusInvited:
		actionType = types.ActionInvited
	case types.StatusRejected:
		actionType = types.ActionRejected
	default:
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("cannot transition to %q", req.To)}
	}

	check := func(current types.Status) error {
		if current.IsTerminal() {
			return &InvalidTransitionError{
				CandidateID: req.CandidateID,
				From:        current,
				To:          req.To,
				Reason:      fmt.Sprintf("candidate is already %s", current),
			}
		}
		return nil
	}

	out, err := s.apply(ctx, "transition", req.CandidateID, req.To, req.Comment, req.Actor, actionType, check)
	if err != nil {
		return nil, err
	}
	s.notifyTerminal(ctx, out)
	return out, nil
}

// MarkReviewed moves a Pending candidate to Review.
func (s *Service) MarkReviewed(ctx context.Context, id uuid.UUID, comment, actor string) (*Outcome, error) {
	check := func(current types.Status) error {
		if current != types.StatusPending {
			return &InvalidTransitionError{
				CandidateID: id,
				From:        current,
				To:          types.StatusReview,
				Reason:      "only Pending candidates can be marked reviewed",
			}
		}
		return nil
	}
	return s.apply(ctx, "mark reviewed", id, types.StatusReview, comment, actor, types.ActionReviewed, check)
}

// Reopen returns an Invited or Rejected candidate to Review. It is an explicit
// administrative override: it must be enabled by policy and requested by an
// admin, and it sends no notification.
func (s *Service) Reopen(ctx context.Context, req ReopenRequest) (*Outcome, error) {
	if !s.policy.AllowReopen {
		return nil, &InvalidTransitionError{
			CandidateID: req.CandidateID,
			To:          types.StatusReview,
			Reason:      "reopening terminal candidates is disabled",
		}
	}
	if !req.Admin {
		return nil, &ForbiddenError{Actor: actorOrDefault(req.Actor), Operation: "reopen candidates"}
	}

	check := func(current types.Status) error {
		if !current.IsTerminal() {
			return &InvalidTransitionError{
				CandidateID: req.CandidateID,
				From:        current,
				To:          types.StatusReview,
				Reason:      "only Invited or Rejected candidates can be reopened",
			}
		}
		return nil
	}

	out, err := s.apply(ctx, "reopen", req.CandidateID, types.StatusReview, req.Comment, req.Actor, types.ActionStatusChanged, check)
	if err != nil {
		return nil, err
	}
	s.logger.Warn("terminal candidate reopened",
		zap.String(logger.FieldCandidateID, req.CandidateID.String()),
		zap.String(logger.FieldActor, out.Action.Actor),
		zap.String("previous_status", string(out.Action.PreviousStatus)),
	)
	return out, nil
}

// Delete permanently removes a candidate. The audit trail is kept and gains a
// deleted record.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, actor string) error {
	record := &types.CandidateAction{
		ID:          uuid.New(),
		CandidateID: id,
		ActionType:  types.ActionDeleted,
		Actor:       actorOrDefault(actor),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.DeleteCandidate(ctx, id, record); err != nil {
		return wrapStoreError("delete candidate", err)
	}
	s.logger.Info("candidate deleted",
		zap.String(logger.FieldCandidateID, id.String()),
		zap.String(logger.FieldActor, record.Actor),
		zap.String("previous_status", string(record.PreviousStatus)),
	)
	return nil
}

// Get returns a candidate or *NotFoundError.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*types.Candidate, error) {
	c, err := s.repo.GetCandidate(ctx, id)
	if err != nil {
		return nil, &PersistenceError{Op: "get candidate", Err: err}
	}
	if c == nil {
		return nil, &NotFoundError{CandidateID: id}
	}
	return c, nil
}

// List returns candidates matching filter, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]types.Candidate, error) {
	candidates, err := s.repo.ListCandidates(ctx, filter)
	if err != nil {
		return nil, &PersistenceError{Op: "list candidates", Err: err}
	}
	return candidates, nil
}

// Actions returns a candidate's audit trail, newest first. The trail of a
// deleted candidate is still returned.
func (s *Service) Actions(ctx context.Context, id uuid.UUID) ([]types.CandidateAction, error) {
	actions, err := s.repo.ListActions(ctx, id)
	if err != nil {
		return nil, &PersistenceError{Op: "list actions", Err: err}
	}
	return actions, nil
}

// ActionItems returns the queue of candidates awaiting human resolution.
func (s *Service) ActionItems(ctx context.Context) ([]types.ActionItem, error) {
	open, err := s.repo.ListCandidates(ctx, ListFilter{
		Statuses: []types.Status{types.StatusPending, types.StatusReview},
		Limit:    NoLimit,
	})
	if err != nil {
		return nil, &PersistenceError{Op: "list action items", Err: err}
	}
	return BuildActionItems(open), nil
}

// apply runs a guarded status update through the repository.
func (s *Service) apply(ctx context.Context, op string, id uuid.UUID, to types.Status, comment, actor string, actionType types.ActionType, check func(types.Status) error) (*Outcome, error) {
	now := s.now().UTC()
	comment = strings.TrimSpace(comment)

	c, action, err := s.repo.UpdateStatus(ctx, StatusUpdate{
		CandidateID: id,
		NewStatus:   to,
		Comment:     comment,
		UpdatedAt:   now,
		Check:       check,
		Action: types.CandidateAction{
			ID:          uuid.New(),
			CandidateID: id,
			ActionType:  actionType,
			Comment:     comment,
			Actor:       actorOrDefault(actor),
			CreatedAt:   now,
		},
	})
	if err != nil {
		return nil, wrapStoreError(op, err)
	}

	s.logger.Info("candidate status changed",
		zap.String(logger.FieldCandidateID, id.String()),
		zap.String("from", string(action.PreviousStatus)),
		zap.String("to", string(action.NewStatus)),
		zap.String(logger.FieldActor, action.Actor),
	)
	return &Outcome{Candidate: c, Action: action}, nil
}

// notifyTerminal dispatches the invite or reject notification for a candidate
// that is now terminal. The dispatch outlives caller cancellation but is bounded
// by the policy timeout; its failure only produces a warning.
func (s *Service) notifyTerminal(ctx context.Context, out *Outcome) {
	if s.notifier == nil || !out.Candidate.Status.IsTerminal() {
		return
	}

	action := notify.ActionInvite
	if out.Candidate.Status == types.StatusRejected {
		action = notify.ActionReject
	}

	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.policy.NotifyTimeout)
	defer cancel()

	res := s.notifier.Dispatch(dctx, notify.Request{
		Action: action,
		Candidate: notify.Candidate{
			Name:     out.Candidate.Name,
			Email:    out.Candidate.Email,
			Role:     out.Candidate.Role,
			FitScore: out.Candidate.FitScore,
		},
	})
	out.Notification = &res
	if !res.Success {
		out.Warning = fmt.Sprintf("marked as %s; notification not confirmed: %s",
			strings.ToLower(string(out.Candidate.Status)), res.Error)
		s.logger.Warn("notification not confirmed",
			zap.String(logger.FieldCandidateID, out.Candidate.ID.String()),
			zap.String("error", res.Error),
		)
	}
}

// wrapStoreError passes lifecycle errors through and wraps store failures.
func wrapStoreError(op string, err error) error {
	var (
		notFound   *NotFoundError
		transition *InvalidTransitionError
		validation *ValidationError
	)
	if errors.As(err, &notFound) || errors.As(err, &transition) || errors.As(err, &validation) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

func actorOrDefault(actor string) string {
	if actor = strings.TrimSpace(actor); actor != "" {
		return actor
	}
	return types.ActorSystem
}
