// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers an optional YAML file and environment variables on top.
// - Errors are wrapped with this package's sentinels.
package config

import (
	"fmt"
	"time"

	"github.com/okian/chainaudit/internal/domain/types"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// SecureCookie marks the session cookie Secure; enable behind TLS.
	SecureCookie bool `koanf:"secure_cookie"`

	// DatasetFile optionally replaces the embedded demo dataset.
	DatasetFile string `koanf:"dataset_file"`

	// DefaultBasePrice and DefaultRiskThreshold seed new sessions.
	DefaultBasePrice     float64 `koanf:"default_base_price"`
	DefaultRiskThreshold int     `koanf:"default_risk_threshold"`

	// SessionTTLSeconds is how long an idle session is kept.
	SessionTTLSeconds int `koanf:"session_ttl_seconds"`

	// SessionSweepSeconds is the interval of the idle session sweeper.
	SessionSweepSeconds int `koanf:"session_sweep_seconds"`

	// MaxSessions bounds the session store; the least recently seen session is evicted.
	MaxSessions int `koanf:"max_sessions"`

	// NoticeDedupeSize bounds the completion notice idempotency set.
	NoticeDedupeSize int `koanf:"notice_dedupe_size"`

	// ShutdownTimeoutSeconds bounds graceful HTTP shutdown.
	ShutdownTimeoutSeconds int `koanf:"shutdown_timeout_seconds"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		DefaultBasePrice:       types.DefaultBasePrice,
		DefaultRiskThreshold:   types.DefaultRiskThreshold,
		SessionTTLSeconds:      1800,
		SessionSweepSeconds:    60,
		MaxSessions:            10_000,
		NoticeDedupeSize:       10_000,
		ShutdownTimeoutSeconds: 10,
	}
}

// SessionTTL returns the idle TTL as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

// SessionSweep returns the sweeper interval as a duration.
func (c *Config) SessionSweep() time.Duration {
	return time.Duration(c.SessionSweepSeconds) * time.Second
}

// ShutdownTimeout returns the graceful shutdown bound.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// DefaultParameters returns the parameters a new session starts with.
func (c *Config) DefaultParameters() types.Parameters {
	return types.Parameters{BasePrice: c.DefaultBasePrice, RiskThreshold: c.DefaultRiskThreshold}
}

// Validate checks the values Load cannot express as types.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DefaultBasePrice < types.MinBasePrice || c.DefaultBasePrice > types.MaxBasePrice:
		return fmt.Errorf("%w: default_base_price %.2f outside [%.0f, %.0f]",
			ErrInvalidConfig, c.DefaultBasePrice, types.MinBasePrice, types.MaxBasePrice)
	case c.DefaultRiskThreshold < types.MinRiskThreshold || c.DefaultRiskThreshold > types.MaxRiskThreshold:
		return fmt.Errorf("%w: default_risk_threshold %d outside [%d, %d]",
			ErrInvalidConfig, c.DefaultRiskThreshold, types.MinRiskThreshold, types.MaxRiskThreshold)
	case c.SessionTTLSeconds <= 0:
		return fmt.Errorf("%w: session_ttl_seconds must be positive", ErrInvalidConfig)
	case c.SessionSweepSeconds <= 0:
		return fmt.Errorf("%w: session_sweep_seconds must be positive", ErrInvalidConfig)
	case c.MaxSessions <= 0:
		return fmt.Errorf("%w: max_sessions must be positive", ErrInvalidConfig)
	case c.NoticeDedupeSize <= 0:
		return fmt.Errorf("%w: notice_dedupe_size must be positive", ErrInvalidConfig)
	case c.ShutdownTimeoutSeconds <= 0:
		return fmt.Errorf("%w: shutdown_timeout_seconds must be positive", ErrInvalidConfig)
	}
	return nil
}
