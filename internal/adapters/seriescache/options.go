package seriescache

// defaultMaxEntries bounds the store when no option overrides it.
const defaultMaxEntries = 256

// Option applies a configuration option to the LRUStore.
type Option func(*LRUStore)

// WithMaxEntries bounds the number of memoized series.
func WithMaxEntries(n int) Option {
	return func(s *LRUStore) {
		if n > 0 {
			s.maxSize = n
		}
	}
}
