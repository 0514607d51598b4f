package service

import (
	"time"

	"github.com/runeset/elotrace/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClubEndpoint sets the club source base URL and request timeout.
func WithClubEndpoint(base string, timeout time.Duration) Option {
	return func(s *Service) {
		s.clubBaseURL = base
		s.clubTimeout = timeout
	}
}

// WithSnapshotEndpoint sets the annual snapshot base URL, per-page
// timeout, and the default crawl year range.
func WithSnapshotEndpoint(base string, timeout time.Duration, startYear, endYear int) Option {
	return func(s *Service) {
		s.snapshotBaseURL = base
		s.snapshotTimeout = timeout
		if startYear > 0 {
			s.defaultYears.From = startYear
		}
		s.defaultYears.To = endYear
	}
}

// WithFastPath sets the pre-built series URL templates and timeout.
func WithFastPath(templates []string, timeout time.Duration) Option {
	return func(s *Service) {
		s.fastPathTemplates = templates
		s.fastPathTimeout = timeout
	}
}

// WithPoliteness sets the minimum gap between upstream requests per host.
func WithPoliteness(delay time.Duration) Option {
	return func(s *Service) {
		if delay >= 0 {
			s.politenessDelay = delay
		}
	}
}

// WithBreaker sets the circuit breaker trip threshold and cooldown.
func WithBreaker(failures int, cooldown time.Duration) Option {
	return func(s *Service) {
		if failures > 0 {
			s.breakerFailures = failures
		}
		if cooldown > 0 {
			s.breakerCooldown = cooldown
		}
	}
}

// WithCacheMaxEntries bounds the session memo cache.
func WithCacheMaxEntries(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.cacheMaxEntries = n
		}
	}
}

// WithQueueCapacity bounds the fetch queue.
func WithQueueCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.queueCapacity = n
		}
	}
}

// WithMaxCompare caps the comparison entities kept per request.
func WithMaxCompare(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxCompare = n
		}
	}
}

// WithMaxWindow caps the smoothing window.
func WithMaxWindow(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxWindow = n
		}
	}
}

// WithAliasFile replaces the embedded alias table with a YAML file.
func WithAliasFile(path string) Option {
	return func(s *Service) {
		s.aliasFile = path
	}
}

// WithFetcher overrides the sources registry; tests inject stub
// fetchers through this.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) {
		s.fetcher = f
	}
}
