// Package metrics provides Prometheus metrics for the elotrace service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the elotrace service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Fetch Metrics - upstream source behavior
	fetchRequests    *prometheus.CounterVec
	fetchDuration    *prometheus.HistogramVec
	yearPages        *prometheus.CounterVec
	fastpathAttempts *prometheus.CounterVec

	// Parse Metrics - row-level data quality
	parseRows *prometheus.CounterVec

	// Cache Metrics - session memo store
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	cacheEvictions prometheus.Counter
	cacheEntries   prometheus.Gauge

	// Queue Metrics - fetch serialization
	queueDepth    prometheus.Gauge
	queueCapacity prometheus.Gauge
	jobsEnqueued  prometheus.Counter
	jobsRejected  prometheus.Counter
	jobWaitTime   prometheus.Histogram

	// Breaker Metrics - per-source circuit state
	breakerState *prometheus.GaugeVec

	// Pipeline Metrics - series assembly
	seriesRequests    *prometheus.CounterVec
	seriesPoints      prometheus.Histogram
	transformDuration prometheus.Histogram
	exports           *prometheus.CounterVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInFlight        prometheus.Gauge

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	uptime               prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "elotrace",
		subsystem:        "series",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// Upstream latency buckets in milliseconds; year crawls legitimately take
// tens of seconds, so the tail stretches far beyond request-serving norms.
var fetchBuckets = []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 20000, 30000, 60000, 120000} //nolint:gochecknoglobals

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Fetch Metrics - what the upstream sources are doing to us
	m.fetchRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "fetch_requests_total",
			Help:      "Total number of entity fetches by source kind and outcome",
		},
		[]string{"source", "outcome"},
	)

	m.fetchDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "fetch_duration_milliseconds",
			Help:      "Entity fetch duration in milliseconds, crawl pacing included",
			Buckets:   fetchBuckets,
		},
		[]string{"source"},
	)

	m.yearPages = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "year_pages_total",
			Help:      "Annual snapshot pages by outcome (hit, miss, skipped)",
		},
		[]string{"outcome"},
	)

	m.fastpathAttempts = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "fastpath_attempts_total",
			Help:      "Pre-built series endpoint attempts by outcome (hit, miss, error)",
		},
		[]string{"outcome"},
	)

	// Parse Metrics - row-level data quality per source
	m.parseRows = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "parse_rows_total",
			Help:      "Parsed upstream rows by source kind and outcome (kept, dropped)",
		},
		[]string{"source", "outcome"},
	)

	// Cache Metrics - session memo store health
	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_hits_total",
		Help:      "Total number of memo cache hits",
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_misses_total",
		Help:      "Total number of memo cache misses",
	})

	m.cacheEvictions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_evictions_total",
		Help:      "Total number of memo cache evictions at the size bound",
	})

	m.cacheEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_entries",
		Help:      "Current number of memo cache entries",
	})

	// Queue Metrics - fetch serialization backlog
	m.queueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_queue_depth",
		Help:      "Current depth of the fetch queue (backlog indicator)",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_queue_capacity",
		Help:      "Maximum fetch queue capacity",
	})

	m.jobsEnqueued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_jobs_enqueued_total",
		Help:      "Total number of fetch jobs enqueued",
	})

	m.jobsRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_jobs_rejected_total",
		Help:      "Total number of fetch jobs rejected by backpressure",
	})

	m.jobWaitTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_job_wait_milliseconds",
		Help:      "Time a fetch job spends queued before the worker picks it up",
		Buckets:   fetchBuckets,
	})

	// Breaker Metrics - circuit state per source
	m.breakerState = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "breaker_state",
			Help:      "Circuit breaker state per source (0 closed, 1 half-open, 2 open)",
		},
		[]string{"source"},
	)

	// Pipeline Metrics - series assembly outcomes
	m.seriesRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "requests_total",
			Help:      "Series pipeline runs by status (ok, partial, empty, error)",
		},
		[]string{"status"},
	)

	m.seriesPoints = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "points_returned",
		Help:      "Step points returned per series request",
		Buckets:   []float64{1, 10, 50, 100, 250, 500, 1000, 2500, 5000},
	})

	m.transformDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "transform_duration_milliseconds",
		Help:      "Smoothing and rebase transform duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.exports = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "exports_total",
			Help:      "Series exports by format (csv, xlsx)",
		},
		[]string{"format"},
	)

	// HTTP Performance Metrics - user experience indicators
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds (user experience)",
			Buckets:   fetchBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpInFlight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_in_flight",
		Help:      "Number of HTTP requests currently being served",
	})

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.uptime = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "uptime_seconds",
		Help:      "Seconds since the service started",
	})
}

// Fetch Metrics Functions.

// RecordFetch counts an entity fetch by source kind and outcome.
func RecordFetch(source, outcome string) {
	globalManager.fetchRequests.WithLabelValues(source, outcome).Inc()
}

// RecordFetchDuration records an entity fetch duration in milliseconds.
func RecordFetchDuration(source string, latencyMs float64) {
	globalManager.fetchDuration.WithLabelValues(source).Observe(latencyMs)
}

// RecordYearPage counts one annual snapshot page by outcome.
func RecordYearPage(outcome string) {
	globalManager.yearPages.WithLabelValues(outcome).Inc()
}

// RecordFastpathAttempt counts one pre-built series endpoint attempt.
func RecordFastpathAttempt(outcome string) {
	globalManager.fastpathAttempts.WithLabelValues(outcome).Inc()
}

// Parse Metrics Functions.

// RecordParseRows adds n parsed rows for a source with the given outcome.
func RecordParseRows(source, outcome string, n int) {
	if n <= 0 {
		return
	}
	globalManager.parseRows.WithLabelValues(source, outcome).Add(float64(n))
}

// Cache Metrics Functions.

// RecordCacheHit increments the memo cache hit counter.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss increments the memo cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// RecordCacheEviction increments the memo cache eviction counter.
func RecordCacheEviction() {
	globalManager.cacheEvictions.Inc()
}

// UpdateCacheEntries sets the current memo cache entry count.
func UpdateCacheEntries(count int) {
	globalManager.cacheEntries.Set(float64(count))
}

// Queue Metrics Functions.

// UpdateQueueDepth sets the current fetch queue depth.
func UpdateQueueDepth(depth int) {
	globalManager.queueDepth.Set(float64(depth))
}

// UpdateQueueCapacity sets the maximum fetch queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordJobEnqueued increments the enqueued jobs counter.
func RecordJobEnqueued() {
	globalManager.jobsEnqueued.Inc()
}

// RecordJobRejected increments the backpressure rejection counter.
func RecordJobRejected() {
	globalManager.jobsRejected.Inc()
}

// RecordJobWait records how long a job waited in the queue, in milliseconds.
func RecordJobWait(latencyMs float64) {
	globalManager.jobWaitTime.Observe(latencyMs)
}

// Breaker Metrics Functions.

// UpdateBreakerState sets the circuit state gauge for a source.
func UpdateBreakerState(source string, state int) {
	globalManager.breakerState.WithLabelValues(source).Set(float64(state))
}

// Pipeline Metrics Functions.

// RecordSeriesRequest counts one pipeline run by status.
func RecordSeriesRequest(status string) {
	globalManager.seriesRequests.WithLabelValues(status).Inc()
}

// RecordSeriesPoints records the number of step points returned by a run.
func RecordSeriesPoints(count int) {
	globalManager.seriesPoints.Observe(float64(count))
}

// RecordTransformDuration records the transform stage duration in milliseconds.
func RecordTransformDuration(latencyMs float64) {
	globalManager.transformDuration.Observe(latencyMs)
}

// RecordExport counts one export by format.
func RecordExport(format string) {
	globalManager.exports.WithLabelValues(format).Inc()
}

// HTTP Performance Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// IncHTTPInFlight increments the in-flight request gauge.
func IncHTTPInFlight() {
	globalManager.httpInFlight.Inc()
}

// DecHTTPInFlight decrements the in-flight request gauge.
func DecHTTPInFlight() {
	globalManager.httpInFlight.Dec()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// UpdateUptime sets the uptime gauge in seconds.
func UpdateUptime(seconds float64) {
	globalManager.uptime.Set(seconds)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
