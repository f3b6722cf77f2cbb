package ratelimit

import (
	"strings"
	"time"
)

// EndpointConfig is the limit applied to one method and path. A Path ending
// in "/" also covers everything below it.
// Limit is requests per Window, 0 meaning unlimited; Burst defaults to Limit.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int
	Window time.Duration
	Burst  int
}

// Settings is the file and environment form of the limiter configuration.
type Settings struct {
	Enabled         bool          `mapstructure:"enabled"`
	DefaultLimit    int           `mapstructure:"default_limit"`
	DefaultWindow   time.Duration `mapstructure:"default_window"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	Whitelist       []string      `mapstructure:"whitelist"`
	Blacklist       []string      `mapstructure:"blacklist"`
}

// DefaultSettings allows 1000 requests a minute per client on endpoints
// without their own entry.
func DefaultSettings() Settings {
	return Settings{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// Config builds the limiter configuration, attaching DefaultEndpointConfigs.
func (s Settings) Config() *Config {
	if !s.Enabled {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    s.DefaultLimit,
		DefaultWindow:   s.DefaultWindow,
		CleanupInterval: s.CleanupInterval,
		Whitelist:       clientSet(s.Whitelist),
		Blacklist:       clientSet(s.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the per-endpoint limits. Reads fall back to
// the default limit.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Scoring calls an external model or workflow per request
		{Path: "/candidates/screen", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/candidates/bulk", Method: "POST", Limit: 20, Window: time.Minute, Burst: 2},

		{Path: "/candidates", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/candidates/", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/candidates/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 10},
	}
}

// clientSet accepts entries that may themselves hold comma separated addresses.
func clientSet(entries []string) map[string]bool {
	set := make(map[string]bool)
	for _, entry := range entries {
		for _, addr := range strings.Split(entry, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				set[addr] = true
			}
		}
	}
	return set
}
