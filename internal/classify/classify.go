// Package classify maps a fit score to a fit category and an initial workflow status.
package classify

import (
	"fmt"

	"github.com/jonathan/candidate-tracker/internal/types"
)

const (
	// MinScore is the lowest valid fit score
	MinScore = 0
	// MaxScore is the highest valid fit score
	MaxScore = 100
)

// Thresholds configures classification. Scores are inclusive bounds:
// a score equal to StrongThreshold is Strong, equal to AutoRejectThreshold is auto-rejected.
type Thresholds struct {
	StrongThreshold     int  `mapstructure:"strong_threshold"`
	MediumThreshold     int  `mapstructure:"medium_threshold"`
	AutoInviteThreshold int  `mapstructure:"auto_invite_threshold"`
	AutoRejectThreshold int  `mapstructure:"auto_reject_threshold"`
	AutoInviteEnabled   bool `mapstructure:"auto_invite_enabled"`
	AutoRejectEnabled   bool `mapstructure:"auto_reject_enabled"`
}

// DefaultThresholds returns the stock configuration: Strong >= 75, Medium >= 50,
// auto-invite at 90 and above, auto-reject below 40, both toggles on.
func DefaultThresholds() Thresholds {
	return Thresholds{
		StrongThreshold:     75,
		MediumThreshold:     50,
		AutoInviteThreshold: 90,
		AutoRejectThreshold: 39,
		AutoInviteEnabled:   true,
		AutoRejectEnabled:   true,
	}
}

// Validate rejects thresholds that would make classification non-monotonic or ambiguous.
func (t Thresholds) Validate() error {
	bounds := []struct {
		name  string
		value int
	}{
		{"strong_threshold", t.StrongThreshold},
		{"medium_threshold", t.MediumThreshold},
		{"auto_invite_threshold", t.AutoInviteThreshold},
		{"auto_reject_threshold", t.AutoRejectThreshold},
	}
	for _, b := range bounds {
		if b.value < MinScore || b.value > MaxScore {
			return &ValidationError{Field: b.name, Message: fmt.Sprintf("must be between %d and %d, got %d", MinScore, MaxScore, b.value)}
		}
	}
	if t.MediumThreshold > t.StrongThreshold {
		return &ValidationError{Field: "medium_threshold", Message: "must not exceed strong_threshold"}
	}
	if t.AutoRejectThreshold >= t.AutoInviteThreshold {
		return &ValidationError{Field: "auto_reject_threshold", Message: "must be below auto_invite_threshold"}
	}
	return nil
}

// Result is the outcome of classifying a score.
type Result struct {
	FitCategory   types.FitCategory `json:"fit_category"`
	InitialStatus types.Status      `json:"initial_status"`
}

// ValidationError reports a malformed score or threshold.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// Category returns the fit category for score.
func (t Thresholds) Category(score int) types.FitCategory {
	switch {
	case score >= t.StrongThreshold:
		return types.FitStrong
	case score >= t.MediumThreshold:
		return types.FitMedium
	default:
		return types.FitLow
	}
}

// InitialStatus returns the workflow status a freshly screened candidate starts in.
// Disabled toggles fall through to Review even when the score qualifies.
func (t Thresholds) InitialStatus(score int) types.Status {
	if t.AutoInviteEnabled && score >= t.AutoInviteThreshold {
		return types.StatusInvited
	}
	if t.AutoRejectEnabled && score <= t.AutoRejectThreshold {
		return types.StatusRejected
	}
	return types.StatusReview
}

// Classify maps score to a category and initial status. It has no side effects.
func Classify(score int, t Thresholds) (Result, error) {
	if score < MinScore || score > MaxScore {
		return Result{}, &ValidationError{
			Field:   "fit_score",
			Message: fmt.Sprintf("must be between %d and %d, got %d", MinScore, MaxScore, score),
		}
	}
	return Result{
		FitCategory:   t.Category(score),
		InitialStatus: t.InitialStatus(score),
	}, nil
}
