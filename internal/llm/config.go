// Package llm wraps the generative model used to score candidates.
package llm

import "fmt"

// ModelTier represents the capability level of a model
type ModelTier string

const (
	// TierLite is for cheap, high-volume screening
	TierLite ModelTier = "lite"
	// TierStandard is the default screening tier
	TierStandard ModelTier = "standard"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// Config holds the model configuration.
type Config struct {
	Provider    Provider             `mapstructure:"provider"`
	APIKey      string               `mapstructure:"api_key"`
	Models      map[ModelTier]string `mapstructure:"models"`
	Tier        ModelTier            `mapstructure:"tier"`
	Temperature float32              `mapstructure:"temperature"`
}

// DefaultConfig returns the default Gemini configuration
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
		},
		Tier:        TierStandard,
		Temperature: 0.1,
	}
}

// GetModel returns the model name for a tier, falling back to standard then lite.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok && model != "" {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok && model != "" {
		return model
	}
	if model, ok := c.Models[TierLite]; ok && model != "" {
		return model
	}
	return ""
}

// Validate checks that the configuration can build a client.
func (c *Config) Validate() error {
	if c.Provider != ProviderGemini {
		return fmt.Errorf("unsupported llm provider %q", c.Provider)
	}
	if c.GetModel(c.Tier) == "" {
		return fmt.Errorf("no model configured for tier %s", c.Tier)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %v", c.Temperature)
	}
	return nil
}
