// Package config defines kiosk configuration and how it is loaded.
//
// Conventions:
//   - New(ctx) returns a Config holding every default.
//   - Load layers a YAML file and KIOSK_* environment variables on top.
//   - Errors wrap ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/challengeboard/internal/domain/measure"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" yaml:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format" yaml:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" yaml:"addr"`

	// ChallengeKind selects the measurement: scalar or feet_inches.
	ChallengeKind string `koanf:"challenge_kind" yaml:"challenge_kind"`

	// ChallengeTitle overrides the kind's default title on the kiosk page.
	ChallengeTitle string `koanf:"challenge_title" yaml:"challenge_title"`

	// TopK is the leaderboard size.
	TopK int `koanf:"top_k" yaml:"top_k"`

	// MaxEntries bounds one session's store; 0 means unbounded.
	MaxEntries int `koanf:"max_entries" yaml:"max_entries"`

	// QueueSize bounds pending submissions.
	QueueSize int `koanf:"queue_size" yaml:"queue_size"`

	// DedupeSize sets how many submission ids are remembered.
	DedupeSize int `koanf:"dedupe_size" yaml:"dedupe_size"`

	// SubmitTimeoutMS bounds how long a submission waits for the pipeline.
	SubmitTimeoutMS int `koanf:"submit_timeout_ms" yaml:"submit_timeout_ms"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit" yaml:"max_leaderboard_limit"`

	// ChartWidth and ChartHeight size the PNG chart in pixels.
	ChartWidth  int `koanf:"chart_width" yaml:"chart_width"`
	ChartHeight int `koanf:"chart_height" yaml:"chart_height"`
}

// New creates a Config holding the defaults. Context is accepted first to
// satisfy the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":8080",
		ChallengeKind:       measure.KindScalar,
		TopK:                3,
		MaxEntries:          0,
		QueueSize:           256,
		DedupeSize:          4096,
		SubmitTimeoutMS:     5000,
		MaxLeaderboardLimit: 100,
		ChartWidth:          960,
		ChartHeight:         540,
	}
}

// Kind resolves ChallengeKind.
func (c *Config) Kind() (measure.Kind, error) {
	return measure.Lookup(c.ChallengeKind)
}

// SubmitTimeout returns SubmitTimeoutMS as a duration.
func (c *Config) SubmitTimeout() time.Duration {
	return time.Duration(c.SubmitTimeoutMS) * time.Millisecond
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.TopK < 1:
		return fmt.Errorf("%w: top_k must be at least 1, got %d", ErrInvalidConfig, c.TopK)
	case c.MaxEntries < 0:
		return fmt.Errorf("%w: max_entries must not be negative, got %d", ErrInvalidConfig, c.MaxEntries)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be at least 1, got %d", ErrInvalidConfig, c.QueueSize)
	case c.SubmitTimeoutMS < 1:
		return fmt.Errorf("%w: submit_timeout_ms must be positive, got %d", ErrInvalidConfig, c.SubmitTimeoutMS)
	case c.MaxLeaderboardLimit < c.TopK:
		return fmt.Errorf("%w: max_leaderboard_limit %d is below top_k %d", ErrInvalidConfig, c.MaxLeaderboardLimit, c.TopK)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	case c.ChartWidth < 1 || c.ChartHeight < 1:
		return fmt.Errorf("%w: chart size must be positive, got %dx%d", ErrInvalidConfig, c.ChartWidth, c.ChartHeight)
	}
	if _, err := c.Kind(); err != nil {
		return fmt.Errorf("%w: challenge_kind: %w", ErrInvalidConfig, err)
	}
	return nil
}
