// Package scoring talks to the collaborator that scores a resume against a job
// description. Responses are untrusted: every field is checked against the
// scoring schema before a result is returned.
package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/candidate-tracker/internal/schemas"
	"github.com/jonathan/candidate-tracker/internal/types"
	rootschemas "github.com/jonathan/candidate-tracker/schemas"
	"github.com/mitchellh/mapstructure"
)

// Scorer scores one submission.
type Scorer interface {
	Score(ctx context.Context, jobDescription, resumeText string) (*types.ScoringResult, error)
}

// InvalidScoringResponseError means the collaborator answered with a payload
// that is missing fields, has the wrong types, or holds out-of-range values.
type InvalidScoringResponseError struct {
	Reason string
	Fields []string
	Cause  error
}

func (e *InvalidScoringResponseError) Error() string {
	msg := "invalid scoring response: " + e.Reason
	if len(e.Fields) > 0 {
		msg += " (" + strings.Join(e.Fields, ", ") + ")"
	}
	return msg
}

func (e *InvalidScoringResponseError) Unwrap() error {
	return e.Cause
}

// UnavailableError means the collaborator could not be reached or refused the request.
type UnavailableError struct {
	Scorer string
	Err    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s scorer unavailable: %v", e.Scorer, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Decode validates raw collaborator output and converts it to a ScoringResult.
// A single-element JSON array is unwrapped, since workflow tools commonly
// return their output items as a list.
func Decode(raw []byte) (*types.ScoringResult, error) {
	raw = unwrapSingleton(raw)

	schema, err := schemas.Load(rootschemas.ScoringResult)
	if err != nil {
		return nil, fmt.Errorf("failed to load scoring schema: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		ire := &InvalidScoringResponseError{Reason: "schema validation failed", Cause: err}
		if ve, ok := err.(*schemas.ValidationError); ok {
			for _, fe := range ve.Errors {
				ire.Fields = append(ire.Fields, fe.Field)
			}
		}
		return nil, ire
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &InvalidScoringResponseError{Reason: "response is not a JSON object", Cause: err}
	}

	var result types.ScoringResult
	if err := mapstructure.Decode(doc, &result); err != nil {
		return nil, &InvalidScoringResponseError{Reason: "failed to decode fields", Cause: err}
	}

	if err := Validate(&result); err != nil {
		return nil, err
	}
	if result.Strengths == nil {
		result.Strengths = []string{}
	}
	if result.Gaps == nil {
		result.Gaps = []string{}
	}
	return &result, nil
}

// Validate enforces the range and enum rules on a decoded or caller-supplied result.
func Validate(r *types.ScoringResult) error {
	var fields []string
	if r.FitScore < 0 || r.FitScore > 100 {
		fields = append(fields, "fitScore")
	}
	if r.FitCategory.Rank() < 0 {
		fields = append(fields, "fitCategory")
	}
	if !r.RecommendedAction.Valid() {
		fields = append(fields, "recommendedAction")
	}
	if len(fields) > 0 {
		return &InvalidScoringResponseError{Reason: "field out of range", Fields: fields}
	}
	return nil
}

func unwrapSingleton(raw []byte) []byte {
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "[") {
		return raw
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &items); err != nil || len(items) != 1 {
		return raw
	}
	return items[0]
}
