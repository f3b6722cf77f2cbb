package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		status   Status
		terminal bool
		valid    bool
	}{
		{StatusPending, false, true},
		{StatusReview, false, true},
		{StatusInvited, true, true},
		{StatusRejected, true, true},
		{Status("Archived"), false, false},
		{Status(""), false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
			assert.Equal(t, tt.valid, tt.status.Valid())
		})
	}
}

func TestFitCategory_Rank(t *testing.T) {
	assert.Less(t, FitLow.Rank(), FitMedium.Rank())
	assert.Less(t, FitMedium.Rank(), FitStrong.Rank())
	assert.Equal(t, -1, FitCategory("strong").Rank(), "categories are case-sensitive")
}

func TestRecommendedAction_Valid(t *testing.T) {
	for _, a := range []RecommendedAction{RecommendInterview, RecommendReview, RecommendReject} {
		assert.True(t, a.Valid(), a)
	}
	assert.False(t, RecommendedAction("").Valid())
	assert.False(t, RecommendedAction("Hire").Valid())
}

func TestPriority_Rank(t *testing.T) {
	assert.Equal(t, 0, PriorityHigh.Rank())
	assert.Equal(t, 1, PriorityMedium.Rank())
	assert.Equal(t, 2, PriorityLow.Rank())
}
