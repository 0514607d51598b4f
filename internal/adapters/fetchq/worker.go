package fetchq

import (
	"context"
	"time"

	"github.com/runeset/elotrace/internal/adapters/seriescache"
	"github.com/runeset/elotrace/internal/domain/model"
	"github.com/runeset/elotrace/pkg/logger"
	"github.com/runeset/elotrace/pkg/metrics"
)

// Fetcher resolves an entity against its upstream source. Implemented
// by the sources registry.
type Fetcher interface {
	Fetch(ctx context.Context, entity string, kind model.SourceKind, years model.YearRange) (model.RawSeries, error)
}

// Worker is the single sequential consumer of the fetch queue. One
// worker per process: the upstream politeness contract requires
// fetches to run one at a time.
type Worker struct {
	queue   Queue
	fetcher Fetcher
	cache   seriescache.Store
	name    string

	shutdown chan struct{}
	done     chan struct{}

	log logger.Logger
}

// NewWorker creates the fetch worker.
func NewWorker(queue Queue, fetcher Fetcher, cache seriescache.Store, opts ...WorkerOption) *Worker {
	w := &Worker{
		queue:    queue,
		fetcher:  fetcher,
		cache:    cache,
		name:     "fetch-worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		log:      logger.Get().Named("fetchq"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Run consumes jobs until the context is canceled, the queue closes,
// or Shutdown is called. Each job is answered exactly once on its
// reply channel.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

// process answers one job: memo cache first, upstream on a miss.
// The fetch itself is never canceled mid-flight; the adapter timeouts
// are the only cutoff.
func (w *Worker) process(ctx context.Context, job Job) {
	metrics.RecordJobWait(float64(time.Since(job.Enqueued).Milliseconds()))

	key := job.CacheKey()
	if series, ok := w.cache.Get(ctx, key); ok {
		w.log.Debug(ctx, "fetch served from cache",
			logger.String("job", job.ID),
			logger.String("entity", job.Entity),
			logger.String("source", string(job.Kind)))
		job.deliver(Result{Series: series})
		return
	}

	series, err := w.fetcher.Fetch(ctx, job.Entity, job.Kind, job.Years)
	if err == nil && !series.Empty() {
		w.cache.Put(ctx, key, series)
	}
	if err != nil {
		w.log.Warn(ctx, "fetch failed",
			logger.String("job", job.ID),
			logger.String("entity", job.Entity),
			logger.String("source", string(job.Kind)),
			logger.Error(err))
	}
	job.deliver(Result{Series: series, Err: err})
}

// Shutdown stops the worker after the in-flight job finishes.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WorkerOption applies a configuration option to the worker.
type WorkerOption func(*Worker)

// WithName names the worker for log attribution.
func WithName(name string) WorkerOption {
	return func(w *Worker) {
		if name != "" {
			w.name = name
			w.log = logger.Get().Named(name)
		}
	}
}
