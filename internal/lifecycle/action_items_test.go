package lifecycle

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/candidate-tracker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriority(t *testing.T) {
	tests := []struct {
		name string
		c    types.Candidate
		want types.Priority
	}{
		{"interview recommendation at 90", types.Candidate{FitScore: 90, FitCategory: types.FitStrong, RecommendedAction: types.RecommendInterview}, types.PriorityHigh},
		{"interview recommendation at 89", types.Candidate{FitScore: 89, FitCategory: types.FitStrong, RecommendedAction: types.RecommendInterview}, types.PriorityMedium},
		{"interview recommendation at 80", types.Candidate{FitScore: 80, FitCategory: types.FitStrong, RecommendedAction: types.RecommendInterview}, types.PriorityMedium},
		{"reject recommendation at 72", types.Candidate{FitScore: 72, FitCategory: types.FitMedium, RecommendedAction: types.RecommendReject}, types.PriorityMedium},
		{"review recommendation at 70", types.Candidate{FitScore: 70, FitCategory: types.FitMedium, RecommendedAction: types.RecommendReview}, types.PriorityHigh},
		{"score 70 without recommendation", types.Candidate{FitScore: 70, FitCategory: types.FitMedium}, types.PriorityHigh},
		{"score 69 medium", types.Candidate{FitScore: 69, FitCategory: types.FitMedium}, types.PriorityMedium},
		{"low category", types.Candidate{FitScore: 30, FitCategory: types.FitLow, RecommendedAction: types.RecommendReject}, types.PriorityLow},
		{"duplicate is medium", types.Candidate{FitScore: 95, FitCategory: types.FitStrong, IsDuplicate: true}, types.PriorityMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Priority(tt.c))
		})
	}
}

func TestBuildActionItems(t *testing.T) {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	lowOld := types.Candidate{ID: uuid.New(), FitScore: 30, FitCategory: types.FitLow, Status: types.StatusReview, ScreenedAt: base}
	mediumOld := types.Candidate{ID: uuid.New(), FitScore: 55, FitCategory: types.FitMedium, Status: types.StatusPending, ScreenedAt: base}
	mediumNew := types.Candidate{ID: uuid.New(), FitScore: 60, FitCategory: types.FitMedium, Status: types.StatusReview, ScreenedAt: base.Add(time.Hour)}
	high := types.Candidate{ID: uuid.New(), FitScore: 80, FitCategory: types.FitStrong, Status: types.StatusReview, ScreenedAt: base}
	dup := types.Candidate{ID: uuid.New(), FitScore: 85, FitCategory: types.FitStrong, Status: types.StatusReview, ScreenedAt: base,
		IsDuplicate: true, DuplicateInfo: `Already screened for "SRE" on May 1, 2026 (Score: 85%)`}
	invited := types.Candidate{ID: uuid.New(), FitScore: 95, FitCategory: types.FitStrong, Status: types.StatusInvited, ScreenedAt: base}

	items := BuildActionItems([]types.Candidate{lowOld, mediumOld, invited, dup, mediumNew, high})
	require.Len(t, items, 5)

	got := make([]uuid.UUID, len(items))
	for i, it := range items {
		got[i] = it.CandidateID
	}
	assert.Equal(t, []uuid.UUID{high.ID, mediumNew.ID, mediumOld.ID, dup.ID, lowOld.ID}, got)

	for _, it := range items {
		if it.CandidateID == dup.ID {
			assert.Equal(t, types.ItemDuplicate, it.Type)
			assert.Contains(t, it.Message, "Already screened for")
		} else {
			assert.Equal(t, types.ItemReview, it.Type)
		}
	}
}

func TestBuildActionItems_Empty(t *testing.T) {
	assert.Empty(t, BuildActionItems(nil))
}
