package fetchq

import "errors"

// Sentinel errors for this package. These allow errors.Is from callers.
var (
	// ErrQueueFull signals backpressure: the queue is at capacity and
	// the job was not accepted.
	ErrQueueFull = errors.New("fetch queue full")
	// ErrQueueClosed signals an enqueue after Close.
	ErrQueueClosed = errors.New("fetch queue closed")
)
