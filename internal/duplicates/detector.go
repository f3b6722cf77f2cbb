// Package duplicates decides whether a new submission repeats an earlier screening.
package duplicates

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/candidate-tracker/internal/ingestion"
	"github.com/jonathan/candidate-tracker/internal/types"
)

// DateLayout is how prior screening dates appear in duplicate explanations.
const DateLayout = "Jan 2, 2006"

// Submission is the part of a new candidate that duplicate detection looks at.
type Submission struct {
	Email      string
	Role       string
	ResumeText string
}

// Result is frozen onto the candidate record at creation.
type Result struct {
	IsDuplicate   bool   `json:"is_duplicate"`
	DuplicateInfo string `json:"duplicate_info,omitempty"`
}

// ValidationError reports a submission that cannot be checked.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// Detect compares sub against existing, a point-in-time snapshot of candidates.
// Email and role match case-insensitively. A same-role match wins over
// other-role matches; among same-role matches the most recently screened is cited.
func Detect(sub Submission, existing []types.Candidate) (Result, error) {
	email := strings.TrimSpace(sub.Email)
	if email == "" {
		return Result{}, &ValidationError{Field: "email", Message: "is required"}
	}
	role := strings.TrimSpace(sub.Role)

	matches := make([]types.Candidate, 0)
	for _, c := range existing {
		if strings.EqualFold(strings.TrimSpace(c.Email), email) {
			matches = append(matches, c)
		}
	}
	if len(matches) == 0 {
		return Result{}, nil
	}

	// Most recent first; stable so equal timestamps keep snapshot order.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].ScreenedAt.After(matches[j].ScreenedAt)
	})

	for _, c := range matches {
		if strings.EqualFold(strings.TrimSpace(c.Role), role) {
			return Result{
				IsDuplicate: true,
				DuplicateInfo: fmt.Sprintf("Already screened for %q on %s (Score: %d%%)",
					c.Role, c.ScreenedAt.Format(DateLayout), c.FitScore),
			}, nil
		}
	}

	info := "Previously screened for: " + strings.Join(distinctRoles(matches), ", ")
	if prior := sameResume(sub.ResumeText, matches); prior != nil {
		info += fmt.Sprintf(" (identical resume submitted for %q)", prior.Role)
	}

	return Result{IsDuplicate: true, DuplicateInfo: info}, nil
}

// distinctRoles lists roles in the order given, dropping case-insensitive repeats.
func distinctRoles(matches []types.Candidate) []string {
	seen := make(map[string]bool, len(matches))
	roles := make([]string, 0, len(matches))
	for _, c := range matches {
		key := strings.ToLower(strings.TrimSpace(c.Role))
		if seen[key] {
			continue
		}
		seen[key] = true
		roles = append(roles, c.Role)
	}
	return roles
}

// sameResume returns the first match whose resume text is the same as resume.
func sameResume(resume string, matches []types.Candidate) *types.Candidate {
	fp := ingestion.Fingerprint(resume)
	if fp == "" {
		return nil
	}
	for i := range matches {
		if matches[i].ResumeText != "" && ingestion.Fingerprint(matches[i].ResumeText) == fp {
			return &matches[i]
		}
	}
	return nil
}
