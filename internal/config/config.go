// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - New(ctx) builds a Config with defaults; Load(ctx) layers file and env on top.
//   - Validation failures wrap ErrInvalidConfig, loader failures wrap ErrLoadConfig.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
)

// Substitution policies accepted by SubstitutionPolicy.
const (
	SubstitutionInherit  = "inherit"
	SubstitutionKeepSlot = "keep_slot"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StaticDir is the directory served by the front door. Empty disables it.
	StaticDir string `koanf:"static_dir"`

	// IndexFile is served for "/".
	IndexFile string `koanf:"index_file"`

	// QueueSize bounds the in-memory match queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of analysis workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize caps the match ids remembered per season session.
	DedupeSize int `koanf:"dedupe_size"`

	// DatabasePath points at the SQLite season store. Empty keeps seasons in memory.
	DatabasePath string `koanf:"database_path"`

	// UpstreamBaseURL is the match endpoint; ids go in the match_id query
	// parameter. Empty disables fetching by id.
	UpstreamBaseURL string `koanf:"upstream_base_url"`

	// UpstreamRatePerSec and UpstreamBurst throttle upstream fetches.
	UpstreamRatePerSec float64 `koanf:"upstream_rate_per_sec"`
	UpstreamBurst      int     `koanf:"upstream_burst"`

	// UpstreamTimeoutMS bounds a single upstream request.
	UpstreamTimeoutMS int `koanf:"upstream_timeout_ms"`

	// SubstitutionPolicy is either "inherit" or "keep_slot".
	SubstitutionPolicy string `koanf:"substitution_policy"`

	// MaxLeaderboardLimit caps GET /v1/streaks?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// CORSOrigins is a comma separated allow list; "*" allows everything.
	CORSOrigins string `koanf:"cors_origins"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		StaticDir:           "",
		IndexFile:           "volleyball_replay_v1.html",
		QueueSize:           1_000,
		WorkerCount:         runtime.NumCPU(),
		DedupeSize:          10_000,
		DatabasePath:        "",
		UpstreamBaseURL:     "https://lentopallo-api.torneopal.net/taso/rest/getMatch",
		UpstreamRatePerSec:  2,
		UpstreamBurst:       4,
		UpstreamTimeoutMS:   10_000,
		SubstitutionPolicy:  SubstitutionInherit,
		MaxLeaderboardLimit: 100,
		CORSOrigins:         "*",
	}
}

// AllowedOrigins splits CORSOrigins into trimmed, non-empty entries.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.DedupeSize <= 0:
		return fmt.Errorf("%w: dedupe_size must be positive", ErrInvalidConfig)
	case c.UpstreamRatePerSec <= 0 || c.UpstreamBurst <= 0:
		return fmt.Errorf("%w: upstream rate and burst must be positive", ErrInvalidConfig)
	case c.MaxLeaderboardLimit <= 0:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	}
	switch c.SubstitutionPolicy {
	case SubstitutionInherit, SubstitutionKeepSlot:
	default:
		return fmt.Errorf("%w: unknown substitution_policy %q", ErrInvalidConfig, c.SubstitutionPolicy)
	}
	return nil
}
