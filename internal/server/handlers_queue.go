package server

import (
	"net/http"

	"github.com/jonathan/candidate-tracker/internal/bulk"
	"github.com/jonathan/candidate-tracker/internal/types"
)

// handleActionItems returns the derived queue of candidates awaiting a decision.
func (s *Server) handleActionItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.Lifecycle.ActionItems(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []types.ActionItem{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
	})
}

// handleBulk applies one action to many candidates. Per-item failures are
// reported in the body; the response is 200 whenever the run itself started.
func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request) {
	var req types.BulkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.deps.Bulk.Apply(r.Context(), bulk.Request{
		IDs:     req.IDs,
		Action:  bulk.Action(req.Action),
		Comment: req.Comment,
		Actor:   operator(r),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, res)
}
