// Package queue defines the contract for enqueuing and consuming book
// requests awaiting resolution.
//
// Implementations may use channels or more advanced structures; the
// in-memory bounded queue is enough for a single process.
package queue

import (
	"context"
	"sync"

	"github.com/foliolabs/folio/internal/domain/model"
	"github.com/foliolabs/folio/pkg/metrics"
)

// defaultCapacity bounds the number of pending requests.
const defaultCapacity = 1000

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a request to the queue.
	// Returns false if the queue is full and the request was not accepted.
	Enqueue(ctx context.Context, req model.Request) bool

	// Dequeue returns a channel that yields requests as they become
	// available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan model.Request

	// Len returns the current number of pending requests.
	Len(ctx context.Context) int

	// Close shuts the queue down; pending requests still drain.
	Close() error

	// IsClosed returns true once Close has been called.
	IsClosed() bool
}

// InMemoryQueue implements Queue over a buffered channel.
type InMemoryQueue struct {
	requests chan model.Request
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a bounded in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.requests = make(chan model.Request, q.capacity)

	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a request to the queue without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, req model.Request) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return false
	}

	select {
	case q.requests <- req:
		metrics.UpdateQueueSize(len(q.requests))
		return true
	case <-ctx.Done():
		return false
	default:
		return false // queue is full
	}
}

// Dequeue returns a channel yielding pending requests.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan model.Request {
	out := make(chan model.Request)
	go func() {
		defer close(out)
		for req := range q.requests {
			select {
			case out <- req:
				metrics.UpdateQueueSize(len(q.requests))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the number of pending requests.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	size := len(q.requests)
	metrics.UpdateQueueSize(size)
	return size
}

// Close shuts the queue down.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.requests)
	q.closed = true
	return nil
}

// IsClosed returns true once Close has been called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
