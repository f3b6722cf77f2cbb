package types

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validScreenRequest() ScreenRequest {
	return ScreenRequest{
		Name:           "Ada Lovelace",
		Email:          "ada@example.com",
		Role:           "Backend Engineer",
		JobDescription: strings.Repeat("Go services and Postgres. ", 5),
		ResumeText:     strings.Repeat("Built APIs. ", 5),
	}
}

func TestScreenRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ScreenRequest)
		wantTag string
	}{
		{"valid", func(*ScreenRequest) {}, ""},
		{"missing name", func(r *ScreenRequest) { r.Name = "" }, "required"},
		{"bad email", func(r *ScreenRequest) { r.Email = "not-an-email" }, "email"},
		{"short job description", func(r *ScreenRequest) { r.JobDescription = "too short" }, "min"},
		{"short resume", func(r *ScreenRequest) { r.ResumeText = "tiny" }, "min"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validScreenRequest()
			tt.mutate(&req)
			err := req.Validate()
			if tt.wantTag == "" {
				assert.NoError(t, err)
				return
			}
			var ve validator.ValidationErrors
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantTag, ve[0].Tag())
		})
	}
}

func TestRecordRequest_RequiresScoring(t *testing.T) {
	req := RecordRequest{Name: "Ada", Email: "ada@example.com", Role: "Engineer"}
	assert.Error(t, req.Validate())

	req.Scoring = &ScoringResult{FitScore: 80, FitCategory: FitStrong}
	assert.NoError(t, req.Validate())
}

func TestBulkRequest_Validate(t *testing.T) {
	ok := BulkRequest{IDs: []uuid.UUID{uuid.New()}, Action: "invite"}
	assert.NoError(t, ok.Validate())

	empty := BulkRequest{Action: "invite"}
	assert.Error(t, empty.Validate())

	unknown := BulkRequest{IDs: []uuid.UUID{uuid.New()}, Action: "promote"}
	assert.Error(t, unknown.Validate())
}

func TestDecisionRequest_Validate(t *testing.T) {
	assert.NoError(t, (&DecisionRequest{}).Validate())
	assert.Error(t, (&DecisionRequest{Comment: strings.Repeat("x", 2001)}).Validate())
}

func TestDuplicateCheckRequest_Validate(t *testing.T) {
	assert.NoError(t, (&DuplicateCheckRequest{Email: "a@example.com", Role: "Engineer"}).Validate())
	assert.Error(t, (&DuplicateCheckRequest{Email: "a@example.com"}).Validate())
}
