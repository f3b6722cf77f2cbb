package lifecycle

import (
	"fmt"
	"sort"

	"github.com/jonathan/candidate-tracker/internal/types"
)

// BuildActionItems projects open candidates into queue entries. Terminal
// candidates never produce an item. Items are ordered by priority, then newest first.
func BuildActionItems(candidates []types.Candidate) []types.ActionItem {
	items := make([]types.ActionItem, 0, len(candidates))
	for _, c := range candidates {
		if c.Status.IsTerminal() {
			continue
		}
		items = append(items, actionItemFor(c))
	}

	sort.SliceStable(items, func(i, j int) bool {
		pi, pj := items[i].Priority.Rank(), items[j].Priority.Rank()
		if pi != pj {
			return pi < pj
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items
}

func actionItemFor(c types.Candidate) types.ActionItem {
	item := types.ActionItem{
		CandidateID:   c.ID,
		CandidateName: c.Name,
		Role:          c.Role,
		FitScore:      c.FitScore,
		Status:        c.Status,
		Type:          types.ItemReview,
		Priority:      Priority(c),
		CreatedAt:     c.ScreenedAt,
	}

	switch {
	case c.IsDuplicate:
		item.Type = types.ItemDuplicate
		item.Message = "Duplicate submission: " + c.DuplicateInfo
	case c.RecommendedAction == types.RecommendInterview:
		item.Message = fmt.Sprintf("AI recommends Interview - %d%% fit score", c.FitScore)
	case c.RecommendedAction == types.RecommendReject:
		item.Message = fmt.Sprintf("AI recommends Reject - %d%% fit score", c.FitScore)
	default:
		item.Message = fmt.Sprintf("Candidate with %d%% fit score requires manual review", c.FitScore)
	}
	return item
}

// Priority ranks how urgently an open candidate needs attention. Interview
// recommendations are high only at 90 and above, reject recommendations stay
// medium, and everything else is high from 70. A medium item in the Low
// category drops to low.
func Priority(c types.Candidate) types.Priority {
	if c.IsDuplicate {
		return types.PriorityMedium
	}

	p := types.PriorityMedium
	switch c.RecommendedAction {
	case types.RecommendInterview:
		if c.FitScore >= 90 {
			p = types.PriorityHigh
		}
	case types.RecommendReject:
	default:
		if c.FitScore >= 70 {
			p = types.PriorityHigh
		}
	}

	if p == types.PriorityMedium && c.FitCategory == types.FitLow {
		return types.PriorityLow
	}
	return p
}
