// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults, Load(ctx) to layer sources.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"time"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9480".
	Addr string `koanf:"addr"`

	// ClubBaseURL is the interval-based club rating endpoint base.
	ClubBaseURL string `koanf:"club_base_url"`

	// ClubTimeout bounds a single club fetch request.
	ClubTimeout time.Duration `koanf:"club_timeout"`

	// SnapshotBaseURL is the annual snapshot page base; pages live at
	// <base>/<year>.
	SnapshotBaseURL string `koanf:"snapshot_base_url"`

	// SnapshotTimeout bounds a single year-page request.
	SnapshotTimeout time.Duration `koanf:"snapshot_timeout"`

	// SnapshotStartYear and SnapshotEndYear set the default crawl range
	// when the caller supplies none. A zero end year means "current year".
	SnapshotStartYear int `koanf:"snapshot_start_year"`
	SnapshotEndYear   int `koanf:"snapshot_end_year"`

	// FastPathTemplates are candidate pre-built series URLs, each with
	// exactly one %s placeholder for the escaped entity name. Tried in
	// order before falling back to the year crawl.
	FastPathTemplates []string `koanf:"fastpath_templates"`

	// FastPathTimeout bounds a single fast-path request.
	FastPathTimeout time.Duration `koanf:"fastpath_timeout"`

	// PolitenessDelay is the minimum gap between requests to the same
	// host, pacing the year crawl.
	PolitenessDelay time.Duration `koanf:"politeness_delay"`

	// BreakerFailures is the consecutive transport failures that trip a
	// source's circuit breaker; BreakerCooldown is the open duration.
	BreakerFailures int           `koanf:"breaker_failures"`
	BreakerCooldown time.Duration `koanf:"breaker_cooldown"`

	// CacheMaxEntries bounds the session memo cache.
	CacheMaxEntries int `koanf:"cache_max_entries"`

	// QueueCapacity bounds the in-memory fetch queue.
	QueueCapacity int `koanf:"queue_capacity"`

	// MaxCompare caps the number of comparison entities per request.
	MaxCompare int `koanf:"max_compare"`

	// MaxWindow caps the smoothing window in entries.
	MaxWindow int `koanf:"max_window"`

	// AliasFile optionally replaces the embedded alias table with a
	// YAML file.
	AliasFile string `koanf:"alias_file"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9480",
		ClubBaseURL:       "http://api.clubelo.com",
		ClubTimeout:       30 * time.Second,
		SnapshotBaseURL:   "https://www.eloratings.net",
		SnapshotTimeout:   20 * time.Second,
		SnapshotStartYear: 1900,
		SnapshotEndYear:   0,
		FastPathTemplates: []string{
			"https://www.eloratings.net/graph/%s.csv",
			"https://www.eloratings.net/%s_graph",
		},
		FastPathTimeout: 15 * time.Second,
		PolitenessDelay: 250 * time.Millisecond,
		BreakerFailures: 5,
		BreakerCooldown: 60 * time.Second,
		CacheMaxEntries: 256,
		QueueCapacity:   64,
		MaxCompare:      3,
		MaxWindow:       50,
	}
}
