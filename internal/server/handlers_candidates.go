package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/candidate-tracker/internal/lifecycle"
	"github.com/jonathan/candidate-tracker/internal/logger"
	"github.com/jonathan/candidate-tracker/internal/server/middleware"
	"github.com/jonathan/candidate-tracker/internal/types"
	"go.uber.org/zap"
)

// maxListLimit caps the limit query parameter.
const maxListLimit = 1000

// handleScreen scores raw texts and records the candidate.
func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	var req types.ScreenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.deps.Screening.Screen(r.Context(), &req, operator(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, out)
}

// handleRecord records a candidate whose scoring result is already known.
func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	var req types.RecordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.deps.Screening.Record(r.Context(), &req, operator(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, out)
}

// handleCheckDuplicate previews duplicate detection without creating anything.
func (s *Server) handleCheckDuplicate(w http.ResponseWriter, r *http.Request) {
	var req types.DuplicateCheckRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.Screening.CheckDuplicate(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, res)
}

// handleListCandidates handles GET /candidates?status=&role=&category=&limit=
func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	candidates, err := s.deps.Lifecycle.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if candidates == nil {
		candidates = []types.Candidate{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"candidates": candidates,
		"count":      len(candidates),
	})
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.deps.Lifecycle.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.Lifecycle.Delete(r.Context(), id, operator(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"candidate_id": id.String(),
		"status":       "deleted",
	})
}

// handleListActions returns the audit trail, which survives deletion.
func (s *Server) handleListActions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	actions, err := s.deps.Lifecycle.Actions(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if actions == nil {
		actions = []types.CandidateAction{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"actions": actions,
		"count":   len(actions),
	})
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	s.handleDecision(w, r, s.deps.Lifecycle.Invite)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	s.handleDecision(w, r, s.deps.Lifecycle.Reject)
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	s.handleDecision(w, r, s.deps.Lifecycle.MarkReviewed)
}

// handleReopen returns a terminal candidate to Review. Admin only.
func (s *Server) handleReopen(w http.ResponseWriter, r *http.Request) {
	id, req, err := decisionInput(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	admin := false
	if p, err := middleware.GetPrincipal(r); err == nil {
		admin = p.IsAdmin()
	}

	out, err := s.deps.Lifecycle.Reopen(r.Context(), lifecycle.ReopenRequest{
		CandidateID: id,
		Comment:     req.Comment,
		Actor:       operator(r),
		Admin:       admin,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, out)
}

type decisionFunc func(ctx context.Context, id uuid.UUID, comment, actor string) (*lifecycle.Outcome, error)

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request, decide decisionFunc) {
	id, req, err := decisionInput(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := decide(r.Context(), id, req.Comment, operator(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if out.Warning != "" {
		s.logger.Warn("decision committed with warning",
			zap.String(logger.FieldCandidateID, id.String()),
			zap.String("warning", out.Warning),
		)
	}
	s.jsonResponse(w, http.StatusOK, out)
}

// decisionInput parses the candidate id and the optional comment body.
func decisionInput(w http.ResponseWriter, r *http.Request) (uuid.UUID, types.DecisionRequest, error) {
	var req types.DecisionRequest
	id, err := pathID(r)
	if err != nil {
		return uuid.Nil, req, err
	}
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		return uuid.Nil, req, err
	}
	if err := req.Validate(); err != nil {
		return uuid.Nil, req, &lifecycle.ValidationError{Field: "comment", Message: "must be at most 2000 characters"}
	}
	return id, req, nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &ErrBadRequest{Message: fmt.Sprintf("invalid candidate id %q", raw)}
	}
	return id, nil
}

// operator returns the authenticated operator's name.
func operator(r *http.Request) string {
	p, err := middleware.GetPrincipal(r)
	if err != nil {
		return ""
	}
	return p.OperatorName()
}

func parseListFilter(r *http.Request) (lifecycle.ListFilter, error) {
	q := r.URL.Query()
	filter := lifecycle.ListFilter{Role: strings.TrimSpace(q.Get("role"))}

	for _, raw := range q["status"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			status := types.Status(part)
			if !status.Valid() {
				return filter, &lifecycle.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", part)}
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	if raw := q.Get("category"); raw != "" {
		category := types.FitCategory(raw)
		if category.Rank() < 0 {
			return filter, &lifecycle.ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", raw)}
		}
		filter.FitCategory = category
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxListLimit {
			return filter, &lifecycle.ValidationError{Field: "limit", Message: fmt.Sprintf("must be between 1 and %d", maxListLimit)}
		}
		filter.Limit = limit
	}
	return filter, nil
}
