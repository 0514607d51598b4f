// Package service orchestrates the Elo history pipeline: fetch raw
// series per entity through the serialized fetch queue, expand them
// into step points, aggregate and filter the table, apply the optional
// transforms, and summarize — collecting per-entity failures along the
// way instead of aborting on them.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/runeset/elotrace/internal/adapters/fetchq"
	"github.com/runeset/elotrace/internal/adapters/seriescache"
	"github.com/runeset/elotrace/internal/adapters/sources"
	"github.com/runeset/elotrace/internal/domain/alias"
	"github.com/runeset/elotrace/internal/domain/model"
	"github.com/runeset/elotrace/internal/domain/series"
	"github.com/runeset/elotrace/internal/domain/step"
	"github.com/runeset/elotrace/internal/domain/transform"
	"github.com/runeset/elotrace/internal/exporter"
	"github.com/runeset/elotrace/pkg/logger"
	"github.com/runeset/elotrace/pkg/metrics"
)

// Fetcher resolves one entity against its upstream source.
type Fetcher = fetchq.Fetcher

// Service implements the API dependencies for the Elo history system.
type Service struct {
	mu sync.RWMutex

	// Core components
	aliases alias.Matcher
	fetcher Fetcher
	cache   seriescache.Store
	queue   fetchq.Queue
	worker  *fetchq.Worker

	// Configuration
	clubBaseURL       string
	clubTimeout       time.Duration
	snapshotBaseURL   string
	snapshotTimeout   time.Duration
	defaultYears      model.YearRange
	fastPathTemplates []string
	fastPathTimeout   time.Duration
	politenessDelay   time.Duration
	breakerFailures   int
	breakerCooldown   time.Duration
	cacheMaxEntries   int
	queueCapacity     int
	maxCompare        int
	maxWindow         int
	aliasFile         string

	// State
	started   bool
	startedAt time.Time
	stopWork  context.CancelFunc

	// Logging
	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		clubTimeout:     30 * time.Second,
		snapshotTimeout: 20 * time.Second,
		fastPathTimeout: 15 * time.Second,
		politenessDelay: 250 * time.Millisecond,
		breakerFailures: 5,
		breakerCooldown: 60 * time.Second,
		cacheMaxEntries: 256,
		queueCapacity:   64,
		maxCompare:      3,
		maxWindow:       50,
		defaultYears:    model.YearRange{From: 1900},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting elo history service...")

	var aliasOpts []alias.Option
	if s.aliasFile != "" {
		aliasOpts = append(aliasOpts, alias.WithFile(s.aliasFile))
	}
	matcher, err := alias.New(aliasOpts...)
	if err != nil {
		return fmt.Errorf("build alias table: %w", err)
	}
	s.aliases = matcher

	if s.fetcher == nil {
		s.fetcher = sources.NewRegistry(matcher,
			sources.WithClubEndpoint(s.clubBaseURL, s.clubTimeout),
			sources.WithSnapshotEndpoint(s.snapshotBaseURL, s.snapshotTimeout),
			sources.WithFastPath(s.fastPathTemplates, s.fastPathTimeout),
			sources.WithPoliteness(s.politenessDelay),
			sources.WithBreaker(s.breakerFailures, s.breakerCooldown),
		)
	}

	s.cache = seriescache.NewLRUStore(seriescache.WithMaxEntries(s.cacheMaxEntries))
	s.queue = fetchq.NewInMemoryQueue(fetchq.WithCapacity(s.queueCapacity))
	s.worker = fetchq.NewWorker(s.queue, s.fetcher, s.cache)

	// The worker outlives the Start call; it stops with the service.
	workCtx, cancel := context.WithCancel(context.Background())
	s.stopWork = cancel
	go s.worker.Run(workCtx)

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "elo history service started",
		logger.Int("alias_groups", matcher.Len()),
		logger.Int("cache_max_entries", s.cacheMaxEntries),
		logger.Int("queue_capacity", s.queueCapacity))
	return nil
}

// Stop gracefully shuts down the service: the queue stops accepting,
// the in-flight fetch finishes, the cache is dropped.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(ctx, "stopping elo history service...")

	if s.queue != nil {
		_ = s.queue.Close()
	}
	if s.worker != nil {
		if err := s.worker.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "worker shutdown timed out", logger.Error(err))
		}
	}
	if s.stopWork != nil {
		s.stopWork()
	}
	if s.cache != nil {
		s.cache.Close()
	}

	s.started = false
	s.logger.Info(ctx, "elo history service stopped")
}

// Series runs the full pipeline for one query.
func (s *Service) Series(ctx context.Context, q model.Query) (*model.Result, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	q = q.Normalize(s.maxCompare, s.maxWindow)
	if q.Entity == "" {
		return nil, fmt.Errorf("%w: entity is required", ErrInvalidQuery)
	}
	years := s.resolveYears(q.Years)

	var (
		lists     [][]model.StepPoint
		collected []model.EntityError
	)
	for _, entity := range q.EntityList() {
		raw, entityErr, err := s.fetchOne(ctx, entity, q.Source, years)
		if err != nil {
			// Queue backpressure or caller cancellation aborts the whole
			// request; upstream misbehavior never does.
			metrics.RecordSeriesRequest("error")
			return nil, err
		}
		if entityErr != nil {
			collected = append(collected, s.classify(entity, entityErr))
			continue
		}
		if raw.Empty() {
			collected = append(collected, model.EntityError{
				Entity:  entity,
				Kind:    model.ErrorParse,
				Message: fmt.Sprintf("no usable rows in the %s source for %q", q.Source, entity),
			})
			continue
		}
		lists = append(lists, step.Expand(raw))
	}

	table := series.FilterRange(series.Build(lists...), q.From, q.To)
	if table.Empty() {
		metrics.RecordSeriesRequest("empty")
		return nil, &EmptyResultError{Errors: collected}
	}

	start := time.Now()
	table = transform.Apply(table,
		transform.WithWindow(q.Window),
		transform.WithDelta(q.Delta),
	)
	metrics.RecordTransformDuration(float64(time.Since(start).Milliseconds()))
	metrics.RecordSeriesPoints(table.Len())

	status := "ok"
	if len(collected) > 0 {
		status = "partial"
	}
	metrics.RecordSeriesRequest(status)

	result := &model.Result{
		Table:     table,
		Scale:     q.DisplayScale(),
		Errors:    collected,
		FetchedAt: time.Now().UTC(),
	}
	if summary, ok := series.Summarize(table, q.Entity); ok {
		result.Summary = &summary
	}
	return result, nil
}

// ExportCSV runs the pipeline and streams the table as CSV.
func (s *Service) ExportCSV(ctx context.Context, q model.Query, w io.Writer) error {
	res, err := s.Series(ctx, q)
	if err != nil {
		return err
	}
	metrics.RecordExport("csv")
	return exporter.WriteCSV(w, res.Table, exporter.WithBOM())
}

// ExportXLSX runs the pipeline and streams the table as a spreadsheet.
func (s *Service) ExportXLSX(ctx context.Context, q model.Query, w io.Writer) error {
	res, err := s.Series(ctx, q)
	if err != nil {
		return err
	}
	metrics.RecordExport("xlsx")
	return exporter.WriteXLSX(w, res.Table)
}

// Aliases returns the known spelling group for a name, canonical
// spelling first, or nil when the name belongs to no group.
func (s *Service) Aliases(name string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.aliases == nil {
		return nil
	}
	return s.aliases.Variants(name)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"max_compare":    s.maxCompare,
		"max_window":     s.maxWindow,
		"queue_capacity": s.queueCapacity,
	}
	if s.started {
		stats["uptime_seconds"] = time.Since(s.startedAt).Seconds()
		stats["queue_depth"] = s.queue.Len(ctx)
		stats["cache"] = s.cache.Stats()
		stats["alias_groups"] = s.aliases.Len()
	}
	return stats
}

// fetchOne pushes a job through the serialized fetch path and waits
// for the worker's reply. entityErr is a recoverable per-entity
// failure (transport, lookup); err is an infrastructure failure that
// aborts the request (queue backpressure, caller cancellation).
func (s *Service) fetchOne(ctx context.Context, entity string, kind model.SourceKind, years model.YearRange) (raw model.RawSeries, entityErr, err error) {
	job := fetchq.NewJob(entity, kind, years)
	if err := s.queue.Enqueue(ctx, job); err != nil {
		return model.RawSeries{}, nil, fmt.Errorf("enqueue fetch for %q: %w", entity, err)
	}
	res, err := job.Await(ctx)
	if err != nil {
		return model.RawSeries{}, nil, fmt.Errorf("await fetch for %q: %w", entity, err)
	}
	return res.Series, res.Err, nil
}

// classify maps a fetch failure onto the error taxonomy and attaches
// alias suggestions to lookup failures.
func (s *Service) classify(entity string, err error) model.EntityError {
	var noData *sources.NoDataError
	if errors.As(err, &noData) {
		return model.EntityError{
			Entity:      entity,
			Kind:        model.ErrorLookup,
			Message:     noData.Error(),
			Suggestions: s.aliases.Variants(entity),
		}
	}
	return model.EntityError{
		Entity:  entity,
		Kind:    model.ErrorTransport,
		Message: err.Error(),
	}
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// resolveYears falls back to the configured default crawl range and
// resolves the open end against the current year.
func (s *Service) resolveYears(q model.YearRange) model.YearRange {
	years := q
	if years.IsZero() {
		years = s.defaultYears
	}
	return years.Normalize(time.Now().UTC().Year())
}
