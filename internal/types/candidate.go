// Package types provides type definitions for structured data used throughout the candidate tracker.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Status is a candidate's position in the review workflow.
type Status string

// Status constants
const (
	StatusPending  Status = "Pending"
	StatusReview   Status = "Review"
	StatusInvited  Status = "Invited"
	StatusRejected Status = "Rejected"
)

// IsTerminal reports whether no further automatic transition may occur.
func (s Status) IsTerminal() bool {
	return s == StatusInvited || s == StatusRejected
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusReview, StatusInvited, StatusRejected:
		return true
	}
	return false
}

// FitCategory is the qualitative bucket derived from a fit score.
type FitCategory string

// FitCategory constants, ordered from weakest to strongest
const (
	FitLow    FitCategory = "Low"
	FitMedium FitCategory = "Medium"
	FitStrong FitCategory = "Strong"
)

// Rank orders categories so that a higher score never maps to a lower rank.
func (c FitCategory) Rank() int {
	switch c {
	case FitLow:
		return 0
	case FitMedium:
		return 1
	case FitStrong:
		return 2
	}
	return -1
}

// RecommendedAction is the scoring collaborator's suggestion, carried as an enum.
type RecommendedAction string

// RecommendedAction constants
const (
	RecommendInterview RecommendedAction = "Interview"
	RecommendReview    RecommendedAction = "Review"
	RecommendReject    RecommendedAction = "Reject"
)

// Valid reports whether a is a known recommendation. Empty is not valid.
func (a RecommendedAction) Valid() bool {
	switch a {
	case RecommendInterview, RecommendReview, RecommendReject:
		return true
	}
	return false
}

// Candidate is a screened job applicant.
type Candidate struct {
	ID                uuid.UUID         `json:"id"`
	Name              string            `json:"name"`
	Email             string            `json:"email"`
	Role              string            `json:"role"`
	FitScore          int               `json:"fit_score"`
	FitCategory       FitCategory       `json:"fit_category"`
	Status            Status            `json:"status"`
	ScreenedAt        time.Time         `json:"screened_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	ActionComment     string            `json:"action_comment,omitempty"`
	IsDuplicate       bool              `json:"is_duplicate"`
	DuplicateInfo     string            `json:"duplicate_info,omitempty"`
	ResumeText        string            `json:"resume_text,omitempty"`
	JobDescription    string            `json:"job_description,omitempty"`
	ScreeningSummary  string            `json:"screening_summary,omitempty"`
	Strengths         []string          `json:"strengths,omitempty"`
	Gaps              []string          `json:"gaps,omitempty"`
	RecommendedAction RecommendedAction `json:"recommended_action,omitempty"`
}

// ActionType identifies the kind of audit record.
type ActionType string

// ActionType constants
const (
	ActionScreened      ActionType = "screened"
	ActionInvited       ActionType = "invited"
	ActionRejected      ActionType = "rejected"
	ActionReviewed      ActionType = "reviewed"
	ActionStatusChanged ActionType = "status_changed"
	ActionDeleted       ActionType = "deleted"
)

// Actor names used when no authenticated subject drives a change.
const (
	ActorSystem = "system"
	ActorBulk   = "bulk"
)

// CandidateAction is an append-only audit record for a status-changing event.
// PreviousStatus is empty for the screened row written at creation.
type CandidateAction struct {
	ID             uuid.UUID  `json:"id"`
	CandidateID    uuid.UUID  `json:"candidate_id"`
	ActionType     ActionType `json:"action_type"`
	Comment        string     `json:"comment,omitempty"`
	PreviousStatus Status     `json:"previous_status,omitempty"`
	NewStatus      Status     `json:"new_status,omitempty"`
	Actor          string     `json:"actor,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ActionItemType distinguishes why a candidate awaits resolution.
type ActionItemType string

// ActionItemType constants
const (
	ItemReview    ActionItemType = "review"
	ItemDuplicate ActionItemType = "duplicate"
)

// Priority of an action item.
type Priority string

// Priority constants
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns 0 for the most urgent priority.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	}
	return 2
}

// ActionItem is a derived queue entry for a candidate awaiting human resolution.
// It is never stored; see lifecycle.ActionItems.
type ActionItem struct {
	CandidateID   uuid.UUID      `json:"candidate_id"`
	CandidateName string         `json:"candidate_name"`
	Role          string         `json:"role"`
	FitScore      int            `json:"fit_score"`
	Status        Status         `json:"status"`
	Type          ActionItemType `json:"type"`
	Message       string         `json:"message"`
	Priority      Priority       `json:"priority"`
	CreatedAt     time.Time      `json:"created_at"`
}
