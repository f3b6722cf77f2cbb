// Package notify sends invite and reject notifications to external webhooks.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Action is the kind of notification to send.
type Action string

// Action constants
const (
	ActionInvite Action = "invite"
	ActionReject Action = "reject"
)

// DefaultTimeout bounds a single webhook call.
const DefaultTimeout = 10 * time.Second

// Candidate is the candidate summary carried in a notification.
type Candidate struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	FitScore int    `json:"fitScore"`
}

// Request is a single notification to deliver.
type Request struct {
	Action    Action
	Candidate Candidate
}

// Result is the outcome of a dispatch. Failures are reported here, never as errors.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Dispatcher delivers notifications. Implementations must not block the
// caller's committed state and must capture every failure in the Result.
type Dispatcher interface {
	Dispatch(ctx context.Context, req Request) Result
}

// WebhookConfig holds the webhook endpoints.
type WebhookConfig struct {
	InviteURL string        `mapstructure:"invite_url"`
	RejectURL string        `mapstructure:"reject_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// payload is the JSON body posted to a webhook.
type payload struct {
	Action    Action    `json:"action"`
	Timestamp string    `json:"timestamp"`
	Candidate Candidate `json:"candidate"`
}

// WebhookDispatcher posts notifications to per-action webhook URLs.
type WebhookDispatcher struct {
	config     WebhookConfig
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// NewWebhookDispatcher creates a dispatcher. A nil logger discards output.
func NewWebhookDispatcher(cfg WebhookConfig, logger *zap.Logger) *WebhookDispatcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookDispatcher{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		now:        time.Now,
	}
}

// Dispatch makes exactly one POST to the webhook configured for req.Action.
// A missing URL, transport error, timeout, or non-2xx status yields Success=false.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, req Request) (res Result) {
	log := d.logger.With(
		zap.String("action", string(req.Action)),
		zap.String("candidate_email", req.Candidate.Email),
		zap.String("role", req.Candidate.Role),
	)

	defer func() {
		if r := recover(); r != nil {
			res = Result{Success: false, Error: fmt.Sprintf("notification panicked: %v", r)}
		}
		if res.Success {
			log.Info("notification delivered")
		} else {
			log.Warn("notification failed", zap.String("error", res.Error))
		}
	}()

	url, err := d.urlFor(req.Action)
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}

	body, err := json.Marshal(payload{
		Action:    req.Action,
		Timestamp: d.now().UTC().Format(time.RFC3339),
		Candidate: req.Candidate,
	})
	if err != nil {
		return Result{Success: false, Error: fmt.Sprintf("failed to marshal notification: %v", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{Success: false, Error: fmt.Sprintf("failed to build request: %v", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Result{Success: false, Error: "webhook timed out"}
		}
		return Result{Success: false, Error: fmt.Sprintf("webhook request failed: %v", err)}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{Success: false, Error: fmt.Sprintf("webhook returned %d", resp.StatusCode)}
	}
	return Result{Success: true}
}

func (d *WebhookDispatcher) urlFor(action Action) (string, error) {
	var url string
	switch action {
	case ActionInvite:
		url = d.config.InviteURL
	case ActionReject:
		url = d.config.RejectURL
	default:
		return "", fmt.Errorf("unknown notification action: %q", action)
	}
	if url == "" {
		return "", errors.New("webhook URL not configured")
	}
	return url, nil
}
