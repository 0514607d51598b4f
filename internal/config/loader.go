package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Year sanity bounds applied after the zero end year is resolved.
const (
	minYear = 1800
	maxYear = 2100
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if ELOTRACE_CONFIG is set
//  3. env (prefix ELOTRACE_)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("ELOTRACE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: ELOTRACE_ADDR, ELOTRACE_CLUB_TIMEOUT, ...
	// Map env keys like ELOTRACE_CACHE_MAX_ENTRIES -> cache_max_entries.
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("ELOTRACE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "elotrace_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration invariants shared by Load and tests.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	for name, d := range map[string]time.Duration{
		"club_timeout":     c.ClubTimeout,
		"snapshot_timeout": c.SnapshotTimeout,
		"fastpath_timeout": c.FastPathTimeout,
		"breaker_cooldown": c.BreakerCooldown,
	} {
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, name)
		}
	}
	if c.PolitenessDelay < 0 {
		return fmt.Errorf("%w: politeness_delay must not be negative", ErrInvalidConfig)
	}
	for name, n := range map[string]int{
		"breaker_failures":  c.BreakerFailures,
		"cache_max_entries": c.CacheMaxEntries,
		"queue_capacity":    c.QueueCapacity,
	} {
		if n <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, name)
		}
	}
	if c.MaxCompare < 0 {
		return fmt.Errorf("%w: max_compare must not be negative", ErrInvalidConfig)
	}
	if c.MaxWindow < 0 {
		return fmt.Errorf("%w: max_window must not be negative", ErrInvalidConfig)
	}

	end := c.SnapshotEndYear
	if end == 0 {
		end = time.Now().UTC().Year()
	}
	if c.SnapshotStartYear < minYear || end > maxYear || c.SnapshotStartYear > end {
		return fmt.Errorf("%w: snapshot year range %d..%d out of bounds",
			ErrInvalidConfig, c.SnapshotStartYear, end)
	}

	for _, tmpl := range c.FastPathTemplates {
		if strings.Count(tmpl, "%s") != 1 {
			return fmt.Errorf("%w: fastpath template %q must contain exactly one %%s",
				ErrInvalidConfig, tmpl)
		}
	}
	return nil
}
