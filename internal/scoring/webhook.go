package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonathan/candidate-tracker/internal/types"
	"go.uber.org/zap"
)

// DefaultWebhookTimeout bounds a scoring call. Scoring is slow; it is an LLM behind a workflow.
const DefaultWebhookTimeout = 60 * time.Second

const maxResponseBytes = 1 << 20

// WebhookConfig configures the HTTP scoring collaborator.
type WebhookConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// WebhookScorer posts {jobDescription, resumeText} to a scoring workflow.
type WebhookScorer struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewWebhookScorer creates a webhook scorer.
func NewWebhookScorer(cfg WebhookConfig, logger *zap.Logger) (*WebhookScorer, error) {
	if cfg.URL == "" {
		return nil, errors.New("scoring webhook URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultWebhookTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookScorer{
		url:        cfg.URL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}, nil
}

type webhookRequest struct {
	JobDescription string `json:"jobDescription"`
	ResumeText     string `json:"resumeText"`
}

// Score implements Scorer.
func (s *WebhookScorer) Score(ctx context.Context, jobDescription, resumeText string) (*types.ScoringResult, error) {
	body, err := json.Marshal(webhookRequest{JobDescription: jobDescription, ResumeText: resumeText})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scoring request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build scoring request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &UnavailableError{Scorer: "webhook", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &UnavailableError{Scorer: "webhook", Err: fmt.Errorf("failed to read response: %w", err)}
	}

	s.logger.Debug("scoring webhook responded",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.Int("job_description_length", len(jobDescription)),
		zap.Int("resume_length", len(resumeText)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UnavailableError{Scorer: "webhook", Err: fmt.Errorf("webhook returned %d", resp.StatusCode)}
	}
	return Decode(raw)
}
