// Package seriescache memoizes fetched raw series for the lifetime of
// the running session, so repeated dashboard interactions do not re-hit
// the upstream sources.
package seriescache

import (
	"container/list"
	"context"
	"sync"

	"github.com/runeset/elotrace/internal/domain/model"
	"github.com/runeset/elotrace/pkg/metrics"
)

// Key identifies one memoized fetch. The year range participates only
// for annual crawls; club fetches use the zero range.
type Key struct {
	Entity string
	Kind   model.SourceKind
	Years  model.YearRange
}

// Stats is a point-in-time snapshot of cache behavior for /stats.
type Stats struct {
	Entries   int   `json:"entries"`
	MaxSize   int   `json:"max_size"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// Store memoizes raw series per fetch key.
type Store interface {
	// Get returns the memoized series for a key, if present.
	Get(ctx context.Context, key Key) (model.RawSeries, bool)

	// Put memoizes a series under a key, evicting the least recently
	// used entry when the store is at its bound.
	Put(ctx context.Context, key Key, series model.RawSeries)

	// Len returns the current number of entries.
	Len() int

	// Stats returns hit/miss/eviction counters and sizing.
	Stats() Stats

	// Close drops every entry. The store stays usable afterwards; the
	// session simply starts cold again.
	Close()
}

// entry is one cached series plus its recency-list handle.
type entry struct {
	key    Key
	series model.RawSeries
}

// LRUStore is the in-memory Store: a map for lookup and a recency list
// for eviction order. RWMutex-guarded; the stats endpoint reads
// concurrently with the fetch worker's writes.
type LRUStore struct {
	mu      sync.RWMutex
	maxSize int
	items   map[Key]*list.Element
	recency *list.List // front = most recently used

	hits      int64
	misses    int64
	evictions int64
}

// NewLRUStore creates a bounded memo store.
func NewLRUStore(opts ...Option) *LRUStore {
	s := &LRUStore{
		maxSize: defaultMaxEntries,
		items:   make(map[Key]*list.Element),
		recency: list.New(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Get looks a key up and refreshes its recency on a hit.
func (s *LRUStore) Get(_ context.Context, key Key) (model.RawSeries, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[key]
	if !ok {
		s.misses++
		metrics.RecordCacheMiss()
		return model.RawSeries{}, false
	}
	s.recency.MoveToFront(el)
	s.hits++
	metrics.RecordCacheHit()
	return el.Value.(*entry).series, true //nolint:forcetypeassert // list only holds *entry
}

// Put stores a series, evicting from the cold end when full. Storing
// an existing key refreshes its value and recency.
func (s *LRUStore) Put(_ context.Context, key Key, series model.RawSeries) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.items[key]; ok {
		el.Value.(*entry).series = series //nolint:forcetypeassert // list only holds *entry
		s.recency.MoveToFront(el)
		return
	}

	for len(s.items) >= s.maxSize {
		oldest := s.recency.Back()
		if oldest == nil {
			break
		}
		s.recency.Remove(oldest)
		delete(s.items, oldest.Value.(*entry).key) //nolint:forcetypeassert // list only holds *entry
		s.evictions++
		metrics.RecordCacheEviction()
	}

	s.items[key] = s.recency.PushFront(&entry{key: key, series: series})
	metrics.UpdateCacheEntries(len(s.items))
}

// Len returns the current entry count.
func (s *LRUStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Stats snapshots the counters.
func (s *LRUStore) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Entries:   len(s.items),
		MaxSize:   s.maxSize,
		Hits:      s.hits,
		Misses:    s.misses,
		Evictions: s.evictions,
	}
}

// Close drops all entries.
func (s *LRUStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[Key]*list.Element)
	s.recency.Init()
	metrics.UpdateCacheEntries(0)
}
