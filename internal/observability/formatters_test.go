package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/candidate-tracker/internal/bulk"
	"github.com/jonathan/candidate-tracker/internal/lifecycle"
	"github.com/jonathan/candidate-tracker/internal/notify"
	"github.com/jonathan/candidate-tracker/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintOutcome(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintOutcome(&lifecycle.Outcome{
		Candidate: &types.Candidate{
			ID:                uuid.New(),
			Name:              "Ada Lovelace",
			Email:             "ada@example.com",
			Role:              "Backend Engineer",
			FitScore:          92,
			FitCategory:       types.FitStrong,
			Status:            types.StatusInvited,
			RecommendedAction: types.RecommendInterview,
			Strengths:         []string{"Go", "Postgres", "Kafka", "gRPC", "Kubernetes", "Terraform"},
		},
		Notification: &notify.Result{Success: false, Error: "webhook returned 500"},
		Warning:      "marked as invited; notification not confirmed: webhook returned 500",
	})
	output := buf.String()

	assert.Contains(t, output, "CANDIDATE")
	assert.Contains(t, output, "Ada Lovelace")
	assert.Contains(t, output, "92% (Strong)")
	assert.Contains(t, output, "Invited")
	assert.Contains(t, output, "... and 1 more")
	assert.Contains(t, output, "notification not confirmed")
}

func TestPrintOutcome_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintOutcome(nil)
	assert.Empty(t, buf.String())
}

func TestPrintActionItems(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintActionItems([]types.ActionItem{
		{CandidateID: uuid.New(), CandidateName: "Grace", Role: "SRE", Priority: types.PriorityHigh, Message: "Candidate with 72% fit score requires manual review"},
		{CandidateID: uuid.New(), CandidateName: "Linus", Role: "SRE", Priority: types.PriorityMedium, Message: "Duplicate submission: previously applied"},
	})
	output := buf.String()

	assert.Contains(t, output, "ACTION ITEMS")
	assert.Contains(t, output, "2 candidates awaiting a decision")
	assert.Contains(t, output, "[HIGH] Grace - SRE")
	assert.Contains(t, output, "[MEDIUM] Linus - SRE")
}

func TestPrintActionItems_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintActionItems(nil)
	assert.Contains(t, buf.String(), "NOTHING AWAITING REVIEW")
}

func TestPrintBulkResult(t *testing.T) {
	var buf bytes.Buffer
	failed := uuid.New()

	NewPrinter(&buf).PrintBulkResult(bulk.ActionReject, &bulk.Result{
		SuccessCount: 2,
		FailureCount: 1,
		Items: []bulk.ItemResult{
			{CandidateID: uuid.New(), Success: true},
			{CandidateID: failed, Error: "candidate is already Invited"},
			{CandidateID: uuid.New(), Success: true},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "BULK REJECT")
	assert.Contains(t, output, "Succeeded: 2")
	assert.Contains(t, output, failed.String())
}

func TestPrintBox_LinesHaveEqualWidth(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).printBox("TITLE", "short\n"+strings.Repeat("é", 200))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	for _, line := range lines {
		assert.Equal(t, boxWidth, len([]rune(line)), line)
	}
}
