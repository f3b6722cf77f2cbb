// Package config loads the tracker configuration.
//
// Values come from, in increasing precedence: built-in defaults, the YAML
// config file (candidate-tracker.yaml in the working directory, or --config),
// and TRACKER_* environment variables where nested keys use underscores
// (TRACKER_CLASSIFICATION_AUTO_INVITE_ENABLED=false).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/candidate-tracker/internal/bulk"
	"github.com/jonathan/candidate-tracker/internal/classify"
	"github.com/jonathan/candidate-tracker/internal/lifecycle"
	"github.com/jonathan/candidate-tracker/internal/llm"
	"github.com/jonathan/candidate-tracker/internal/notify"
	"github.com/jonathan/candidate-tracker/internal/scoring"
	"github.com/jonathan/candidate-tracker/internal/server/ratelimit"
	"github.com/spf13/viper"
)

// AppName is used for the config file name and the env prefix.
const AppName = "candidate-tracker"

// Store backends
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Scoring providers
const (
	ScoringNone    = "none"
	ScoringWebhook = "webhook"
	ScoringGemini  = "gemini"
)

// Config is the complete tracker configuration.
type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Store          string               `mapstructure:"store"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Classification classify.Thresholds  `mapstructure:"classification"`
	Lifecycle      lifecycle.Policy     `mapstructure:"lifecycle"`
	Notifications  notify.WebhookConfig `mapstructure:"notifications"`
	Scoring        ScoringConfig        `mapstructure:"scoring"`
	Bulk           BulkConfig           `mapstructure:"bulk"`
	RateLimit      ratelimit.Settings   `mapstructure:"rate_limit"`
	Log            LogConfig            `mapstructure:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig configures the Postgres store.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// ScoringConfig selects and configures the scoring collaborator.
type ScoringConfig struct {
	Provider string                `mapstructure:"provider"`
	Webhook  scoring.WebhookConfig `mapstructure:"webhook"`
	Gemini   llm.Config            `mapstructure:"gemini"`
}

// BulkConfig configures bulk actions.
type BulkConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// LogConfig configures logging output.
type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// New returns a viper instance with defaults and environment binding set up.
// Callers may bind flags to it before passing it to Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Conventional names used by the rest of the toolchain.
	_ = v.BindEnv("database.url", "TRACKER_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("scoring.gemini.api_key", "TRACKER_SCORING_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("server.port", "TRACKER_SERVER_PORT", "PORT")
	for _, key := range []string{"enabled", "default_limit", "default_window", "cleanup_interval", "whitelist", "blacklist"} {
		_ = v.BindEnv("rate_limit."+key, "TRACKER_RATE_LIMIT_"+strings.ToUpper(key), "RATE_LIMIT_"+strings.ToUpper(key))
	}
	return v
}

func setDefaults(v *viper.Viper) {
	th := classify.DefaultThresholds()
	gemini := llm.DefaultConfig()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("store", StorePostgres)
	v.SetDefault("database.url", "")

	v.SetDefault("classification.strong_threshold", th.StrongThreshold)
	v.SetDefault("classification.medium_threshold", th.MediumThreshold)
	v.SetDefault("classification.auto_invite_threshold", th.AutoInviteThreshold)
	v.SetDefault("classification.auto_reject_threshold", th.AutoRejectThreshold)
	v.SetDefault("classification.auto_invite_enabled", th.AutoInviteEnabled)
	v.SetDefault("classification.auto_reject_enabled", th.AutoRejectEnabled)

	v.SetDefault("lifecycle.allow_reopen", false)
	v.SetDefault("lifecycle.notify_timeout", notify.DefaultTimeout.String())

	v.SetDefault("notifications.invite_url", "")
	v.SetDefault("notifications.reject_url", "")
	v.SetDefault("notifications.timeout", notify.DefaultTimeout.String())

	v.SetDefault("scoring.provider", ScoringNone)
	v.SetDefault("scoring.webhook.url", "")
	v.SetDefault("scoring.webhook.timeout", scoring.DefaultWebhookTimeout.String())
	v.SetDefault("scoring.gemini.provider", string(gemini.Provider))
	v.SetDefault("scoring.gemini.api_key", "")
	v.SetDefault("scoring.gemini.tier", string(gemini.Tier))
	v.SetDefault("scoring.gemini.temperature", gemini.Temperature)
	for tier, model := range gemini.Models {
		v.SetDefault("scoring.gemini.models."+string(tier), model)
	}

	v.SetDefault("bulk.concurrency", bulk.DefaultConcurrency)

	rl := ratelimit.DefaultSettings()
	v.SetDefault("rate_limit.enabled", rl.Enabled)
	v.SetDefault("rate_limit.default_limit", rl.DefaultLimit)
	v.SetDefault("rate_limit.default_window", rl.DefaultWindow.String())
	v.SetDefault("rate_limit.cleanup_interval", rl.CleanupInterval.String())
	v.SetDefault("rate_limit.whitelist", []string{})
	v.SetDefault("rate_limit.blacklist", []string{})

	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
}

// Load reads the config file at path (or the default file when path is empty)
// into v and returns the validated configuration. A missing default file is
// not an error; a missing explicit file is.
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = New()
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Store {
	case StorePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("config error: 'database.url' is required when store is %s", StorePostgres)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("config error: unknown store %q", c.Store)
	}

	if err := c.Classification.Validate(); err != nil {
		return fmt.Errorf("config error: classification: %w", err)
	}

	switch c.Scoring.Provider {
	case ScoringNone:
	case ScoringWebhook:
		if c.Scoring.Webhook.URL == "" {
			return fmt.Errorf("config error: 'scoring.webhook.url' is required when scoring provider is %s", ScoringWebhook)
		}
	case ScoringGemini:
		if c.Scoring.Gemini.APIKey == "" {
			return fmt.Errorf("config error: 'scoring.gemini.api_key' is required when scoring provider is %s", ScoringGemini)
		}
		if err := c.Scoring.Gemini.Validate(); err != nil {
			return fmt.Errorf("config error: scoring.gemini: %w", err)
		}
	default:
		return fmt.Errorf("config error: unknown scoring provider %q", c.Scoring.Provider)
	}

	if c.Bulk.Concurrency < 1 {
		return fmt.Errorf("config error: 'bulk.concurrency' must be at least 1")
	}
	if c.Lifecycle.NotifyTimeout <= 0 {
		return fmt.Errorf("config error: 'lifecycle.notify_timeout' must be positive")
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.DefaultLimit < 0 {
			return fmt.Errorf("config error: 'rate_limit.default_limit' must not be negative")
		}
		if c.RateLimit.DefaultWindow <= 0 {
			return fmt.Errorf("config error: 'rate_limit.default_window' must be positive")
		}
	}
	return nil
}
