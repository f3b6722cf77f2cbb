package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/candidate-tracker/internal/bulk"
	"github.com/jonathan/candidate-tracker/internal/classify"
	"github.com/jonathan/candidate-tracker/internal/config"
	"github.com/jonathan/candidate-tracker/internal/lifecycle"
	"github.com/jonathan/candidate-tracker/internal/memstore"
	"github.com/jonathan/candidate-tracker/internal/notify"
	"github.com/jonathan/candidate-tracker/internal/scoring"
	"github.com/jonathan/candidate-tracker/internal/screening"
	"github.com/jonathan/candidate-tracker/internal/server/ratelimit"
	"github.com/jonathan/candidate-tracker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedScorer struct {
	result *types.ScoringResult
	err    error
}

func (s *fixedScorer) Score(context.Context, string, string) (*types.ScoringResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := *s.result
	return &out, nil
}

type countingDispatcher struct {
	mu       sync.Mutex
	requests []notify.Request
}

func (d *countingDispatcher) Dispatch(_ context.Context, req notify.Request) notify.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = append(d.requests, req)
	return notify.Result{Success: true}
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

// testServer wires the real services over the in-memory store.
type testServer struct {
	handler    http.Handler
	store      *memstore.Store
	dispatcher *countingDispatcher
	scorer     *fixedScorer
	jwt        *JWTService
}

func newTestServer(t *testing.T, policy lifecycle.Policy) *testServer {
	t.Helper()
	store := memstore.New()
	disp := &countingDispatcher{}
	scorer := &fixedScorer{result: &types.ScoringResult{
		FitScore:          95,
		FitCategory:       types.FitStrong,
		ScreeningSummary:  "Strong Go background",
		Strengths:         []string{"Go"},
		Gaps:              []string{},
		RecommendedAction: types.RecommendInterview,
	}}

	lc := lifecycle.NewService(store, disp, policy, nil)
	scr := screening.NewService(scorer, store, lc, classify.DefaultThresholds(), nil)
	jwtService := setupTestJWTService(t, 1)

	srv := New(Config{Port: 0, RateLimit: &ratelimit.Config{Enabled: false}}, Deps{
		Lifecycle: lc,
		Screening: scr,
		Bulk:      bulk.NewCoordinator(lc, 2, nil),
		Tokens:    jwtService.AsTokenValidator(),
	}, nil)
	t.Cleanup(srv.rateLimiter.Stop)

	return &testServer{handler: srv.Handler(), store: store, dispatcher: disp, scorer: scorer, jwt: jwtService}
}

func (ts *testServer) token(t *testing.T, role types.Role) string {
	t.Helper()
	tok, err := ts.jwt.GenerateToken(types.TokenRequest{Subject: "alice", Role: role})
	require.NoError(t, err)
	return tok
}

func (ts *testServer) do(t *testing.T, method, path string, body any, role types.Role) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token(t, role))
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (ts *testServer) record(t *testing.T, email string, score int) *lifecycle.Outcome {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/candidates", types.RecordRequest{
		Name:  "Ada Lovelace",
		Email: email,
		Role:  "Backend Engineer",
		Scoring: &types.ScoringResult{
			FitScore:          score,
			FitCategory:       types.FitMedium,
			ScreeningSummary:  "summary",
			Strengths:         []string{},
			Gaps:              []string{},
			RecommendedAction: types.RecommendReview,
		},
	}, types.RoleRecruiter)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	out := decode[lifecycle.Outcome](t, w)
	return &out
}

func TestHealth_NoAuth(t *testing.T) {
	ts := newTestServer(t, lifecycle.Policy{})
	w := ts.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok"`)
}

func TestHealth_StoreDown(t *testing.T) {
	srv := New(Config{RateLimit: &ratelimit.Config{}}, Deps{Health: failingPinger{}, Tokens: setupTestJWTService(t, 1).AsTokenValidator()}, nil)
	defer srv.rateLimiter.Stop()

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRoutes_RequireAuth(t *testing.T) {
	ts := newTestServer(t, lifecycle.Policy{})
	for _, path := range []string{"/candidates", "/action-items", "/candidates/" + uuid.NewString()} {
		w := ts.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, lifecycle.Policy{})
	w := ts.do(t, http.MethodOptions, "/candidates", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestScreen_AutoInvite(t *testing.T) {
	ts := newTestServer(t, lifecycle.Policy{})
	w := ts.do(t, http.MethodPost, "/candidates/screen", types.ScreenRequest{
		Name:           "Grace Hopper",
		Email:          "grace@example.com",
		Role:           "Backend Engineer",
		JobDescription: strings.Repeat("We build Go services on Postgres. ", 4),
		ResumeText:     strings.Repeat("Compilers and Go. ", 4),
	}, types.RoleRecruiter)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	out := decode[lifecycle.Outcome](t, w)
	assert.Equal(t, types.StatusInvited, out.Candidate.Status)
	assert.Equal(t, types.FitStrong, out.Candidate.FitCategory)
	assert.Equal(t, "alice", out.Action.Actor)
	assert.Len(t, ts.dispatcher.requests, 1)
}

func TestScreen_ValidationError(t *testing.T) {
	ts := newTestServer(t, lifecycle.Policy{})
	w := ts.do(t, http.MethodPost, "/candidates/screen", types.ScreenRequest{
		Name: "Grace", Email: "grace@example.com", Role: "Engineer",
		JobDescription: "too short", ResumeText: strings.Repeat("x", 60),
	}, types.RoleRecruiter)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[map[string]string](t, w)
	assert.Equal(t, "job_description", body["field"])
}

func TestScreen_ScorerFailure(t *testing.T) {
	ts := newTestServer(t, lifecycle.Policy{})
	ts.scorer.err = &scoring.InvalidScoringResponseError{Reason: "fitScore out of range"}

	w := ts.do(t, http.MethodPost, "/candidates/screen", types.ScreenRequest{
		Name: "Grace", Email: "grace@example.com", Role: "Engineer",
		JobDescription: strings.Repeat("j", 120), ResumeText: strings.Repeat("r", 60),
	}, types.RoleRecruiter)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Zero(t, ts.store.Len())
}

func TestRecord_ReviewAndDecisions(t *testing.T) {
	ts := newTestServer(t, lifecycle.Policy{})
	created := ts.record(t, "ada@example.com", 60)
	assert.Equal(t, types.StatusReview, created.Candidate.Status)
	id := created.Candidate.ID.String()

	w := ts.do(t, http.MethodPost, "/candidates/"+id+"/invite", types.DecisionRequest{Comment: "strong portfolio"}, types.RoleRecruiter)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode[lifecycle.Outcome](t, w)
	assert.Equal(t, types.StatusInvited, out.Candidate.Status)
	assert.Equal(t, "strong portfolio", out.Candidate.ActionComment)

	w = ts.do(t, http.MethodPost, "/candidates/"+id+"/reject", nil, types.RoleRecruiter)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, http.MethodGet, "/candidates/"+id+"/actions", nil, types.RoleRecruiter)
	require.Equal(t, http.StatusOK, w.Code)
	trail := decode[struct {
		Actions []types.CandidateAction `json:"actions"`
		Count   int                     `json:"count"`
	}](t, w)
	assert.Equal(t, 2, trail.Count)
	assert.Equal(t, types.ActionInvited, trail.Actions[0].ActionType)
}

func TestReview_RequiresPending(t *testing.T) {
	ts := newTestServer(t, lifecycle.Policy{})
	created := ts.record(t, "review@example.com", 60)
	require.Equal(t, types.StatusReview, created.Candidate.Status)

	w := ts.do(t, http.MethodPost, "/candidates/"+created.Candidate.ID.String()+"/review", nil, types.RoleRecruiter)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestReopen(t *testing.T) {
	t.Run("disabled by policy", func(t *testing.T) {
		ts := newTestServer(t, lifecycle.Policy{})
		id := ts.record(t, "r1@example.com", 95).Candidate.ID.String()
		w := ts.do(t, http.MethodPost, "/candidates/"+id+"/reopen", nil, types.RoleAdmin)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("recruiter forbidden", func(t *testing.T) {
		ts := newTestServer(t, lifecycle.Policy{AllowReopen: true})
		id := ts.record(t, "r2@example.com", 95).Candidate.ID.String()
		w := ts.do(t, http.MethodPost, "/candidates/"+id+"/reopen", nil, types.RoleRecruiter)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin reopens", func(t *testing.T) {
		ts := newTestServer(t, lifecycle.Policy{AllowReopen: true})
		id := ts.record(t, "r3@example.com", 95).Candidate.ID.String()
		w := ts.do(t, http.MethodPost, "/candidates/"+id+"/reopen", types.DecisionRequest{Comment: "sent in error"}, types.RoleAdmin)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, types.StatusReview, decode[lifecycle.Outcome](t, w).Candidate.Status)
	})
}

func TestGetAndDelete(t *testing.T) {
	ts := newTestServer(t, lifecycle.Policy{})
	id := ts.record(t, "del@example.com", 60).Candidate.ID.String()

	w := ts.do(t, http.MethodGet, "/candidates/"+id, nil, types.RoleRecruiter)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "del@example.com", decode[types.Candidate](t, w).Email)

	w = ts.do(t, http.MethodDelete, "/candidates/"+id, nil, types.RoleRecruiter)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/candidates/"+id, nil, types.RoleRecruiter)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/candidates/"+id+"/actions", nil, types.RoleRecruiter)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), string(types.ActionDeleted))
}

func TestGetCandidate_BadID(t *testing.T) {
	ts := newTestServer(t, lifecycle.Policy{})
	w := ts.do(t, http.MethodGet, "/candidates/not-a-uuid", nil, types.RoleRecruiter)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListCandidates_Filters(t *testing.T) {
	ts := newTestServer(t, lifecycle.Policy{})
	ts.record(t, "a@example.com", 60)
	ts.record(t, "b@example.com", 95)

	w := ts.do(t, http.MethodGet, "/candidates?status=Review", nil, types.RoleRecruiter)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Candidates []types.Candidate `json:"candidates"`
		Count      int               `json:"count"`
	}](t, w)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "a@example.com", list.Candidates[0].Email)

	w = ts.do(t, http.MethodGet, "/candidates?status=Archived", nil, types.RoleRecruiter)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/candidates?limit=0", nil, types.RoleRecruiter)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/candidates?category=Huge", nil, types.RoleRecruiter)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckDuplicate(t *testing.T) {
	ts := newTestServer(t, lifecycle.Policy{})
	ts.record(t, "dup@example.com", 60)

	w := ts.do(t, http.MethodPost, "/candidates/duplicates", types.DuplicateCheckRequest{
		Email: "DUP@example.com", Role: "Backend Engineer",
	}, types.RoleRecruiter)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"is_duplicate":true`)
	assert.Equal(t, 1, ts.store.Len(), "preview must not create candidates")
}

func TestActionItems(t *testing.T) {
	ts := newTestServer(t, lifecycle.Policy{})
	ts.record(t, "q1@example.com", 60)
	ts.record(t, "q2@example.com", 95)

	w := ts.do(t, http.MethodGet, "/action-items", nil, types.RoleRecruiter)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode[struct {
		Items []types.ActionItem `json:"items"`
	}](t, w)
	require.Len(t, items.Items, 1)
	assert.Equal(t, types.StatusReview, items.Items[0].Status)
}

func TestBulk_PartialFailure(t *testing.T) {
	ts := newTestServer(t, lifecycle.Policy{})
	a := ts.record(t, "ba@example.com", 60).Candidate.ID
	b := ts.record(t, "bb@example.com", 95).Candidate.ID
	c := ts.record(t, "bc@example.com", 60).Candidate.ID

	w := ts.do(t, http.MethodPost, "/candidates/bulk", types.BulkRequest{
		IDs: []uuid.UUID{a, b, c}, Action: "reject", Comment: "position filled",
	}, types.RoleRecruiter)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[bulk.Result](t, w)
	assert.Equal(t, 2, res.SuccessCount)
	assert.Equal(t, 1, res.FailureCount)
	assert.False(t, res.Items[1].Success)
}

func TestBulk_InvalidRequest(t *testing.T) {
	ts := newTestServer(t, lifecycle.Policy{})
	w := ts.do(t, http.MethodPost, "/candidates/bulk", types.BulkRequest{Action: "promote"}, types.RoleRecruiter)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDecodeJSON_UnknownField(t *testing.T) {
	ts := newTestServer(t, lifecycle.Policy{})
	w := ts.do(t, http.MethodPost, "/candidates", map[string]any{"name": "x", "surprise": true}, types.RoleRecruiter)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimit(t *testing.T) {
	jwtService := NewJWTService(&config.JWTConfig{Secret: testSecret, Issuer: config.DefaultIssuer, ExpirationHours: 1})
	srv := New(Config{RateLimit: &ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
	}}, Deps{Tokens: jwtService.AsTokenValidator()}, nil)
	defer srv.rateLimiter.Stop()

	first := httptest.NewRecorder()
	srv.Handler().ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/action-items", nil))
	assert.Equal(t, http.StatusUnauthorized, first.Code)

	second := httptest.NewRecorder()
	srv.Handler().ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/action-items", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}
