// Package screening turns a submission into a persisted, classified candidate.
//
// The pipeline is: validate the request, normalize the texts, score (Screen
// only), check prior submissions for duplicates, classify the score, then hand
// the result to the lifecycle, which persists it and sends any notification.
package screening

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/candidate-tracker/internal/classify"
	"github.com/jonathan/candidate-tracker/internal/duplicates"
	"github.com/jonathan/candidate-tracker/internal/ingestion"
	"github.com/jonathan/candidate-tracker/internal/lifecycle"
	"github.com/jonathan/candidate-tracker/internal/scoring"
	"github.com/jonathan/candidate-tracker/internal/types"
	"go.uber.org/zap"
)

// ErrScoringDisabled is returned by Screen when no scorer is configured.
var ErrScoringDisabled = errors.New("no scoring collaborator configured")

// History looks up earlier submissions.
type History interface {
	FindCandidatesByEmail(ctx context.Context, email string) ([]types.Candidate, error)
}

// Creator persists a classified submission.
type Creator interface {
	Create(ctx context.Context, in lifecycle.NewCandidate) (*lifecycle.Outcome, error)
}

// Service runs the screening pipeline.
type Service struct {
	scorer     scoring.Scorer
	history    History
	creator    Creator
	thresholds classify.Thresholds
	logger     *zap.Logger
}

// NewService creates a screening service. scorer may be nil, in which case
// only Record is usable.
func NewService(scorer scoring.Scorer, history History, creator Creator, thresholds classify.Thresholds, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		scorer:     scorer,
		history:    history,
		creator:    creator,
		thresholds: thresholds,
		logger:     logger,
	}
}

// Screen scores raw texts with the collaborator and records the result.
func (s *Service) Screen(ctx context.Context, req *types.ScreenRequest, actor string) (*lifecycle.Outcome, error) {
	if err := req.Validate(); err != nil {
		return nil, toValidationError(err)
	}
	if s.scorer == nil {
		return nil, ErrScoringDisabled
	}

	jobDescription := ingestion.CleanText(req.JobDescription)
	resume := ingestion.CleanText(req.ResumeText)

	result, err := s.scorer.Score(ctx, jobDescription, resume)
	if err != nil {
		return nil, fmt.Errorf("failed to score submission: %w", err)
	}

	return s.record(ctx, submission{
		name:           req.Name,
		email:          req.Email,
		role:           req.Role,
		jobDescription: jobDescription,
		resume:         resume,
		actor:          actor,
	}, result)
}

// Record stores a submission that already carries a scoring result.
func (s *Service) Record(ctx context.Context, req *types.RecordRequest, actor string) (*lifecycle.Outcome, error) {
	if err := req.Validate(); err != nil {
		return nil, toValidationError(err)
	}
	if err := scoring.Validate(req.Scoring); err != nil {
		return nil, &lifecycle.ValidationError{Field: "scoring", Message: err.Error()}
	}

	return s.record(ctx, submission{
		name:           req.Name,
		email:          req.Email,
		role:           req.Role,
		jobDescription: ingestion.CleanText(req.JobDescription),
		resume:         ingestion.CleanText(req.ResumeText),
		actor:          actor,
	}, req.Scoring)
}

// CheckDuplicate previews duplicate detection without creating anything.
func (s *Service) CheckDuplicate(ctx context.Context, req *types.DuplicateCheckRequest) (duplicates.Result, error) {
	if err := req.Validate(); err != nil {
		return duplicates.Result{}, toValidationError(err)
	}
	existing, err := s.history.FindCandidatesByEmail(ctx, req.Email)
	if err != nil {
		return duplicates.Result{}, &lifecycle.PersistenceError{Op: "find candidates by email", Err: err}
	}
	res, err := duplicates.Detect(duplicates.Submission{Email: req.Email, Role: req.Role, ResumeText: req.ResumeText}, existing)
	if err != nil {
		return duplicates.Result{}, toValidationError(err)
	}
	return res, nil
}

type submission struct {
	name, email, role      string
	jobDescription, resume string
	actor                  string
}

func (s *Service) record(ctx context.Context, sub submission, result *types.ScoringResult) (*lifecycle.Outcome, error) {
	cls, err := classify.Classify(result.FitScore, s.thresholds)
	if err != nil {
		return nil, toValidationError(err)
	}
	if result.FitCategory != "" && result.FitCategory != cls.FitCategory {
		s.logger.Debug("scorer category differs from thresholds",
			zap.String("scorer_category", string(result.FitCategory)),
			zap.String("category", string(cls.FitCategory)),
			zap.Int("fit_score", result.FitScore),
		)
	}

	dup := s.detectDuplicate(ctx, sub)

	return s.creator.Create(ctx, lifecycle.NewCandidate{
		Name:              sub.name,
		Email:             sub.email,
		Role:              sub.role,
		FitScore:          result.FitScore,
		FitCategory:       cls.FitCategory,
		Status:            cls.InitialStatus,
		IsDuplicate:       dup.IsDuplicate,
		DuplicateInfo:     dup.DuplicateInfo,
		ResumeText:        sub.resume,
		JobDescription:    sub.jobDescription,
		ScreeningSummary:  strings.TrimSpace(result.ScreeningSummary),
		Strengths:         result.Strengths,
		Gaps:              result.Gaps,
		RecommendedAction: result.RecommendedAction,
		Actor:             sub.actor,
	})
}

// detectDuplicate never fails the submission: a history read error is logged
// and the candidate is recorded as not duplicate.
func (s *Service) detectDuplicate(ctx context.Context, sub submission) duplicates.Result {
	existing, err := s.history.FindCandidatesByEmail(ctx, sub.email)
	if err != nil {
		s.logger.Warn("duplicate check skipped: history unavailable",
			zap.String("role", sub.role),
			zap.Error(err),
		)
		return duplicates.Result{}
	}

	res, err := duplicates.Detect(duplicates.Submission{Email: sub.email, Role: sub.role, ResumeText: sub.resume}, existing)
	if err != nil {
		s.logger.Warn("duplicate check skipped", zap.Error(err))
		return duplicates.Result{}
	}
	return res
}

// toValidationError normalizes the validation errors of the packages the
// pipeline calls into a lifecycle ValidationError.
func toValidationError(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		return &lifecycle.ValidationError{
			Field:   toSnakeCase(fe.Field()),
			Message: describe(fe),
		}
	}

	var cve *classify.ValidationError
	if errors.As(err, &cve) {
		return &lifecycle.ValidationError{Field: cve.Field, Message: cve.Message}
	}
	var dve *duplicates.ValidationError
	if errors.As(err, &dve) {
		return &lifecycle.ValidationError{Field: dve.Field, Message: dve.Message}
	}
	return &lifecycle.ValidationError{Field: "request", Message: err.Error()}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	}
	return fmt.Sprintf("failed %q validation", fe.Tag())
}

func toSnakeCase(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				sb.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
