// Package server provides the HTTP REST API for the candidate tracker.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/candidate-tracker/internal/bulk"
	"github.com/jonathan/candidate-tracker/internal/duplicates"
	"github.com/jonathan/candidate-tracker/internal/lifecycle"
	"github.com/jonathan/candidate-tracker/internal/server/middleware"
	"github.com/jonathan/candidate-tracker/internal/server/ratelimit"
	"github.com/jonathan/candidate-tracker/internal/types"
	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies; resumes and job descriptions are plain text.
const maxBodyBytes = 2 << 20

// Lifecycle is the candidate state machine the API drives.
type Lifecycle interface {
	Get(ctx context.Context, id uuid.UUID) (*types.Candidate, error)
	List(ctx context.Context, filter lifecycle.ListFilter) ([]types.Candidate, error)
	Actions(ctx context.Context, id uuid.UUID) ([]types.CandidateAction, error)
	ActionItems(ctx context.Context) ([]types.ActionItem, error)
	Invite(ctx context.Context, id uuid.UUID, comment, actor string) (*lifecycle.Outcome, error)
	Reject(ctx context.Context, id uuid.UUID, comment, actor string) (*lifecycle.Outcome, error)
	MarkReviewed(ctx context.Context, id uuid.UUID, comment, actor string) (*lifecycle.Outcome, error)
	Reopen(ctx context.Context, req lifecycle.ReopenRequest) (*lifecycle.Outcome, error)
	Delete(ctx context.Context, id uuid.UUID, actor string) error
}

// Screener turns submissions into candidates.
type Screener interface {
	Screen(ctx context.Context, req *types.ScreenRequest, actor string) (*lifecycle.Outcome, error)
	Record(ctx context.Context, req *types.RecordRequest, actor string) (*lifecycle.Outcome, error)
	CheckDuplicate(ctx context.Context, req *types.DuplicateCheckRequest) (duplicates.Result, error)
}

// BulkApplier runs bulk actions.
type BulkApplier interface {
	Apply(ctx context.Context, req bulk.Request) (*bulk.Result, error)
}

// Pinger reports backing store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds server configuration.
type Config struct {
	Port            int
	ShutdownTimeout time.Duration
	RateLimit       *ratelimit.Config
}

// Deps are the collaborators behind the API. Health may be nil.
type Deps struct {
	Lifecycle Lifecycle
	Screening Screener
	Bulk      BulkApplier
	Tokens    middleware.TokenValidator
	Health    Pinger
}

// Server represents the HTTP server.
type Server struct {
	httpServer      *http.Server
	deps            Deps
	rateLimiter     *ratelimit.Limiter
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// New creates a new server instance.
func New(cfg Config, deps Deps, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}

	s := &Server{
		deps:            deps,
		rateLimiter:     ratelimit.NewLimiter(cfg.RateLimit),
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}

	api := http.NewServeMux()
	api.HandleFunc("POST /candidates/screen", s.handleScreen)
	api.HandleFunc("POST /candidates/duplicates", s.handleCheckDuplicate)
	api.HandleFunc("POST /candidates/bulk", s.handleBulk)
	api.HandleFunc("POST /candidates", s.handleRecord)
	api.HandleFunc("GET /candidates", s.handleListCandidates)
	api.HandleFunc("GET /candidates/{id}", s.handleGetCandidate)
	api.HandleFunc("DELETE /candidates/{id}", s.handleDeleteCandidate)
	api.HandleFunc("GET /candidates/{id}/actions", s.handleListActions)
	api.HandleFunc("POST /candidates/{id}/invite", s.handleInvite)
	api.HandleFunc("POST /candidates/{id}/reject", s.handleReject)
	api.HandleFunc("POST /candidates/{id}/review", s.handleReview)
	api.HandleFunc("POST /candidates/{id}/reopen", s.handleReopen)
	api.HandleFunc("GET /action-items", s.handleActionItems)

	root := http.NewServeMux()
	root.HandleFunc("GET /health", s.handleHealth)
	root.Handle("/", middleware.AuthMiddleware(deps.Tokens)(api))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(root))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // screening waits on the scorer
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.rateLimiter.Stop()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(extractClientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleHealth reports liveness and, when configured, store reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health != nil {
		if err := s.deps.Health.Ping(r.Context()); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status code and writes it. Internal failures are
// logged and reported without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	switch status {
	case http.StatusInternalServerError:
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		s.errorResponse(w, status, "internal server error")
		return
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		s.logger.Warn("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}

	var ve *lifecycle.ValidationError
	if errors.As(err, &ve) {
		s.jsonResponse(w, status, map[string]string{"error": ve.Message, "field": ve.Field})
		return
	}
	s.errorResponse(w, status, err.Error())
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return decodeBody(w, r, dst, false)
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be empty.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return decodeBody(w, r, dst, true)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any, optional bool) error {
	if r.Body == nil {
		if optional {
			return nil
		}
		return &ErrBadRequest{Message: "request body is required"}
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return &ErrBadRequest{Message: fmt.Sprintf("invalid request body: %v", err)}
	}
	return nil
}

// extractClientID uses the IP address from RemoteAddr.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}
	if info.RetryAfter > 0 {
		secs := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = secs
		w.Header().Set("Retry-After", fmt.Sprintf("%d", secs))
	}

	s.logger.Info("rate limit exceeded",
		zap.Int("limit", info.Limit),
		zap.Time("reset_at", info.ResetTime),
	)
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
