// Package fetchq serializes upstream fetches through a bounded queue
// consumed by a single worker. The HTTP layer is concurrent, but the
// upstream sources are polite single-file: one fetch at a time,
// whatever the request fan-in.
package fetchq

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/runeset/elotrace/internal/adapters/seriescache"
	"github.com/runeset/elotrace/internal/domain/model"
	"github.com/runeset/elotrace/pkg/metrics"
)

// defaultCapacity bounds the queue when no option overrides it.
const defaultCapacity = 64

// Job is one fetch request traveling through the queue.
type Job struct {
	ID       string
	Entity   string
	Kind     model.SourceKind
	Years    model.YearRange
	Enqueued time.Time

	// reply receives exactly one Result; buffered so the worker never
	// blocks on a caller that gave up.
	reply chan Result
}

// NewJob builds a job with a fresh ID and reply channel.
func NewJob(entity string, kind model.SourceKind, years model.YearRange) Job {
	return Job{
		ID:       uuid.NewString(),
		Entity:   entity,
		Kind:     kind,
		Years:    years,
		Enqueued: time.Now(),
		reply:    make(chan Result, 1),
	}
}

// CacheKey is the memo-store key this job resolves to. Club fetches
// ignore the year range.
func (j Job) CacheKey() seriescache.Key {
	key := seriescache.Key{Entity: j.Entity, Kind: j.Kind}
	if j.Kind == model.SourceNational {
		key.Years = j.Years
	}
	return key
}

// Result is the outcome of one fetch job.
type Result struct {
	Series model.RawSeries
	Err    error
}

// Await blocks until the worker replies or the context ends.
func (j Job) Await(ctx context.Context) (Result, error) {
	select {
	case res := <-j.reply:
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// deliver hands the result to the waiting caller.
func (j Job) deliver(res Result) {
	j.reply <- res
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job to the queue. Returns ErrQueueFull when the
	// queue is at capacity and ErrQueueClosed after Close.
	Enqueue(ctx context.Context, j Job) error

	// Dequeue returns a channel that receives jobs as they become
	// available. Closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Job

	// Len returns the current number of queued jobs.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue; idempotent.
	Close() error

	// IsClosed reports whether the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a bounded in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(q)
		}
	}
	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueDepth(0)
	return q
}

// Enqueue adds a job, never blocking: a full queue is backpressure the
// caller must surface, not absorb.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordJobRejected()
		return ErrQueueClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordJobRejected()
		return err
	}

	select {
	case q.jobs <- j:
		metrics.RecordJobEnqueued()
		metrics.UpdateQueueDepth(len(q.jobs))
		return nil
	default:
		metrics.RecordJobRejected()
		return ErrQueueFull
	}
}

// Dequeue returns the consuming channel.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Job {
	out := make(chan Job)
	go func() {
		defer close(out)
		for job := range q.jobs {
			select {
			case out <- job:
				metrics.UpdateQueueDepth(len(q.jobs))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued jobs.
func (q *InMemoryQueue) Len(_ context.Context) int {
	depth := len(q.jobs)
	metrics.UpdateQueueDepth(depth)
	return depth
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// IsClosed reports whether the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
