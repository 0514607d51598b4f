package sources

import (
	"time"
)

// config collects registry construction choices.
type config struct {
	clubBaseURL       string
	clubTimeout       time.Duration
	snapshotBaseURL   string
	snapshotTimeout   time.Duration
	fastPathTemplates []string
	fastPathTimeout   time.Duration
	politenessDelay   time.Duration
	breakerFailures   int
	breakerCooldown   time.Duration
}

func defaultConfig() config {
	return config{
		clubBaseURL:     "http://api.clubelo.com",
		clubTimeout:     30 * time.Second,
		snapshotBaseURL: "https://www.eloratings.net",
		snapshotTimeout: 20 * time.Second,
		fastPathTimeout: 15 * time.Second,
		politenessDelay: 250 * time.Millisecond,
		breakerFailures: 5,
		breakerCooldown: 60 * time.Second,
	}
}

// Option applies a configuration option to the registry.
type Option func(*config)

// WithClubEndpoint sets the club source base URL and request timeout.
func WithClubEndpoint(base string, timeout time.Duration) Option {
	return func(c *config) {
		if base != "" {
			c.clubBaseURL = base
		}
		if timeout > 0 {
			c.clubTimeout = timeout
		}
	}
}

// WithSnapshotEndpoint sets the annual snapshot base URL and per-page
// timeout.
func WithSnapshotEndpoint(base string, timeout time.Duration) Option {
	return func(c *config) {
		if base != "" {
			c.snapshotBaseURL = base
		}
		if timeout > 0 {
			c.snapshotTimeout = timeout
		}
	}
}

// WithFastPath sets the candidate pre-built series URL templates and
// their timeout. No templates disables the fast path.
func WithFastPath(templates []string, timeout time.Duration) Option {
	return func(c *config) {
		c.fastPathTemplates = templates
		if timeout > 0 {
			c.fastPathTimeout = timeout
		}
	}
}

// WithPoliteness sets the minimum gap between requests to one host.
// Zero disables pacing (used by tests).
func WithPoliteness(delay time.Duration) Option {
	return func(c *config) {
		c.politenessDelay = delay
	}
}

// WithBreaker sets the consecutive-failure trip threshold and the
// open-state cooldown of the per-source circuit breakers.
func WithBreaker(failures int, cooldown time.Duration) Option {
	return func(c *config) {
		if failures > 0 {
			c.breakerFailures = failures
		}
		if cooldown > 0 {
			c.breakerCooldown = cooldown
		}
	}
}
