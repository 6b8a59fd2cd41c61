package repository

import (
	"context"
	"sync"

	"github.com/foliolabs/folio/internal/domain/model"
)

// defaultMaxEntries bounds the in-memory outcome history.
const defaultMaxEntries = 5000

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithMaxEntries bounds how many outcomes are retained; the oldest is
// evicted on overflow. maxEntries <= 0 means unbounded.
func WithMaxEntries(maxEntries int) Option {
	return func(s *MemStore) {
		s.maxEntries = maxEntries
	}
}

// MemStore implements Store with a map plus an insertion-ordered ring of
// request ids for recency queries and eviction.
type MemStore struct {
	mu         sync.RWMutex
	outcomes   map[string]model.Outcome
	order      []string // oldest first
	maxEntries int
}

// NewMemStore creates an in-memory outcome store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		maxEntries: defaultMaxEntries,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.outcomes = make(map[string]model.Outcome)
	return s
}

// Record stores the outcome for a request, replacing any previous one.
func (s *MemStore) Record(ctx context.Context, outcome model.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.outcomes[outcome.RequestID]; !exists {
		if s.maxEntries > 0 && len(s.outcomes) >= s.maxEntries {
			oldest := s.order[0]
			s.order = s.order[1:]
			delete(s.outcomes, oldest)
		}
		s.order = append(s.order, outcome.RequestID)
	}
	s.outcomes[outcome.RequestID] = outcome
	return nil
}

// Get returns the outcome for a request id.
func (s *MemStore) Get(ctx context.Context, requestID string) (model.Outcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	outcome, ok := s.outcomes[requestID]
	if !ok {
		return model.Outcome{}, ErrNotFound
	}
	return outcome, nil
}

// Recent returns up to n outcomes, newest first.
func (s *MemStore) Recent(ctx context.Context, n int) ([]model.Outcome, error) {
	if n <= 0 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > len(s.order) {
		n = len(s.order)
	}
	out := make([]model.Outcome, 0, n)
	for i := len(s.order) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.outcomes[s.order[i]])
	}
	return out, nil
}

// Count returns the number of stored outcomes.
func (s *MemStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.outcomes)
}
