package scoring

import (
	"context"
	"fmt"

	"github.com/jonathan/candidate-tracker/internal/llm"
	"github.com/jonathan/candidate-tracker/internal/logger"
	"github.com/jonathan/candidate-tracker/internal/types"
	"go.uber.org/zap"
)

// GeminiScorer scores submissions with a generative model.
type GeminiScorer struct {
	client llm.Client
	tier   llm.ModelTier
	logger *zap.Logger
}

// NewGeminiScorer wraps an LLM client.
func NewGeminiScorer(client llm.Client, tier llm.ModelTier, logger *zap.Logger) *GeminiScorer {
	if tier == "" {
		tier = llm.TierStandard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiScorer{client: client, tier: tier, logger: logger}
}

// Score implements Scorer.
func (s *GeminiScorer) Score(ctx context.Context, jobDescription, resumeText string) (*types.ScoringResult, error) {
	prompt := llm.BuildPrompt(llm.ScreeningSchema(),
		llm.Section{Label: "Job description", Text: jobDescription},
		llm.Section{Label: "Resume", Text: resumeText},
	)

	out, err := s.client.GenerateJSON(ctx, prompt, s.tier)
	if err != nil {
		return nil, &UnavailableError{Scorer: "gemini", Err: err}
	}

	result, err := Decode([]byte(out))
	if err != nil {
		s.logger.Warn("model returned an invalid scoring response",
			zap.Error(err),
			zap.Int("response_length", len(out)),
			zap.String("response_preview", logger.TruncateForLog(out, 200)),
		)
		return nil, fmt.Errorf("failed to decode model response: %w", err)
	}
	return result, nil
}
