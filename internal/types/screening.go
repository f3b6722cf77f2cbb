package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ScoringResult is a validated response from the scoring collaborator.
type ScoringResult struct {
	FitScore          int               `json:"fitScore" mapstructure:"fitScore"`
	FitCategory       FitCategory       `json:"fitCategory" mapstructure:"fitCategory"`
	ScreeningSummary  string            `json:"screeningSummary" mapstructure:"screeningSummary"`
	Strengths         []string          `json:"strengths" mapstructure:"strengths"`
	Gaps              []string          `json:"gaps" mapstructure:"gaps"`
	RecommendedAction RecommendedAction `json:"recommendedAction" mapstructure:"recommendedAction"`
}

// ScreenRequest is a submission whose texts still need scoring.
// Minimum lengths follow the screening form (100 / 50 characters).
type ScreenRequest struct {
	Name           string `json:"name" validate:"required,min=1,max=200"`
	Email          string `json:"email" validate:"required,email"`
	Role           string `json:"role" validate:"required,min=1,max=200"`
	JobDescription string `json:"job_description" validate:"required,min=100"`
	ResumeText     string `json:"resume_text" validate:"required,min=50"`
}

// Validate validates the ScreenRequest using the validator.
func (r *ScreenRequest) Validate() error {
	return validator.New().Struct(r)
}

// RecordRequest is a submission that already carries a scoring result.
type RecordRequest struct {
	Name           string         `json:"name" validate:"required,min=1,max=200"`
	Email          string         `json:"email" validate:"required,email"`
	Role           string         `json:"role" validate:"required,min=1,max=200"`
	JobDescription string         `json:"job_description,omitempty"`
	ResumeText     string         `json:"resume_text,omitempty"`
	Scoring        *ScoringResult `json:"scoring" validate:"required"`
}

// Validate validates the RecordRequest using the validator.
func (r *RecordRequest) Validate() error {
	return validator.New().Struct(r)
}

// DuplicateCheckRequest previews duplicate detection without creating anything.
type DuplicateCheckRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Role       string `json:"role" validate:"required"`
	ResumeText string `json:"resume_text,omitempty"`
}

// Validate validates the DuplicateCheckRequest using the validator.
func (r *DuplicateCheckRequest) Validate() error {
	return validator.New().Struct(r)
}

// DecisionRequest carries the optional comment for invite / reject / review / reopen.
type DecisionRequest struct {
	Comment string `json:"comment,omitempty" validate:"max=2000"`
}

// Validate validates the DecisionRequest using the validator.
func (r *DecisionRequest) Validate() error {
	return validator.New().Struct(r)
}

// BulkRequest applies one action to many candidates.
type BulkRequest struct {
	IDs     []uuid.UUID `json:"ids" validate:"required,min=1,max=500"`
	Action  string      `json:"action" validate:"required,oneof=invite reject delete"`
	Comment string      `json:"comment,omitempty" validate:"max=2000"`
}

// Validate validates the BulkRequest using the validator.
func (r *BulkRequest) Validate() error {
	return validator.New().Struct(r)
}
