// Package sources fetches and normalizes raw Elo history from the
// upstream endpoints: the interval-based club CSV, the annual snapshot
// pages, and the optional pre-built series fast path. Each adapter
// outputs the common model.RawSeries shape; everything downstream is
// source-agnostic.
package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/runeset/elotrace/pkg/logger"
	"github.com/runeset/elotrace/pkg/metrics"
)

const (
	userAgent = "elotrace/1.0 (+https://github.com/runeset/elotrace)"

	// maxBodyBytes caps how much of an upstream response is read; the
	// largest legitimate page (a full annual ranking) is well under this.
	maxBodyBytes = 4 << 20
)

// guardedClient wraps http.Client with the politeness and robustness
// guards every adapter shares: a per-host rate limiter spacing
// sequential requests, and a per-source circuit breaker so a flapping
// upstream fails fast instead of eating a timeout per year page.
type guardedClient struct {
	http     *http.Client
	delay    time.Duration
	failures uint32
	cooldown time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	breakers map[string]*gobreaker.CircuitBreaker

	log logger.Logger
}

func newGuardedClient(delay time.Duration, failures int, cooldown time.Duration) *guardedClient {
	return &guardedClient{
		http:     &http.Client{},
		delay:    delay,
		failures: uint32(failures), //nolint:gosec // validated positive by config
		cooldown: cooldown,
		limiters: make(map[string]*rate.Limiter),
		breakers: make(map[string]*gobreaker.CircuitBreaker),
		log:      logger.Get().Named("sources.client"),
	}
}

// get fetches one URL on behalf of a source, honoring the host's
// politeness limiter and the source's breaker. It returns the full
// body; any failure is a transport-level failure from the caller's
// point of view.
func (c *guardedClient) get(ctx context.Context, source, rawURL string, timeout time.Duration) ([]byte, error) {
	host := hostOf(rawURL)
	if err := c.limiter(host).Wait(ctx); err != nil {
		return nil, fmt.Errorf("politeness wait: %w", err)
	}

	body, err := c.breaker(source).Execute(func() (interface{}, error) {
		return c.fetch(ctx, rawURL, timeout)
	})
	if err != nil {
		return nil, err
	}
	return body.([]byte), nil //nolint:forcetypeassert // breaker fn always returns []byte
}

func (c *guardedClient) fetch(ctx context.Context, rawURL string, timeout time.Duration) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused before reporting.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &statusError{status: resp.StatusCode, url: rawURL}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// limiter returns the politeness limiter for a host, creating it on
// first use. A zero delay disables pacing.
func (c *guardedClient) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if l, ok := c.limiters[host]; ok {
		return l
	}
	limit := rate.Inf
	if c.delay > 0 {
		limit = rate.Every(c.delay)
	}
	l := rate.NewLimiter(limit, 1)
	c.limiters[host] = l
	return l
}

// breaker returns the circuit breaker for a source, creating it on
// first use.
func (c *guardedClient) breaker(source string) *gobreaker.CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()

	if b, ok := c.breakers[source]; ok {
		return b
	}
	b := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    source,
		Timeout: c.cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn(context.Background(), "breaker state change",
				logger.String("source", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()))
			metrics.UpdateBreakerState(name, breakerStateValue(to))
		},
	})
	c.breakers[source] = b
	return b
}

func breakerStateValue(s gobreaker.State) int {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
