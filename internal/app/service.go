// Package app composes the request pipeline: submissions are deduplicated
// against in-flight work, queued, resolved by a worker pool against the
// acquisition backend, and their outcomes recorded for retrieval.
package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/foliolabs/folio/internal/adapters/mq/queue"
	"github.com/foliolabs/folio/internal/adapters/mq/worker"
	"github.com/foliolabs/folio/internal/adapters/repository"
	"github.com/foliolabs/folio/internal/domain/dedupe"
	"github.com/foliolabs/folio/internal/domain/model"
	"github.com/foliolabs/folio/pkg/logger"
	"github.com/foliolabs/folio/pkg/metrics"
)

// Default service sizing.
const (
	defaultQueueSize      = 1000
	defaultInflightSize   = 10000
	defaultOutcomeHistory = 5000
)

// Service is the public surface of the resolution pipeline.
type Service struct {
	logger       logger.Logger
	catalog      Catalog
	resolverOpts []ResolverOption

	workerCount    int
	queueSize      int
	inflightSize   int
	outcomeHistory int

	queue    *queue.InMemoryQueue
	guard    dedupe.Guard
	store    repository.Store
	resolver *Resolver
	pool     *worker.Pool

	mu      sync.Mutex
	started bool
}

// New creates a Service with configuration options. The catalog client is
// required before Start.
func New(opts ...Option) *Service {
	s := &Service{
		logger:         logger.Get().Named("app"),
		queueSize:      defaultQueueSize,
		inflightSize:   defaultInflightSize,
		outcomeHistory: defaultOutcomeHistory,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the pipeline and launches the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	if s.catalog == nil {
		return ErrNoCatalog
	}

	s.guard = dedupe.NewInMemoryGuard(dedupe.WithMaxSize(s.inflightSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.store = repository.NewMemStore(repository.WithMaxEntries(s.outcomeHistory))
	s.resolver = NewResolver(s.catalog, s.resolverOpts...)
	s.pool = worker.NewPool(s.workerCount, s.queue, s.resolver, s)

	s.pool.Start(ctx)
	s.started = true

	s.logger.Info(ctx, "service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
	)
	return nil
}

// Stop shuts the pipeline down: the queue takes no new submissions and
// workers finish the resolution they hold. Requests still buffered in the
// queue are dropped without an outcome.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}
	s.started = false

	if err := s.queue.Close(); err != nil {
		s.logger.Warn(ctx, "closing queue failed", logger.Error(err))
	}
	s.pool.Stop()

	s.logger.Info(ctx, "service stopped")
	return nil
}

// Submit accepts a request for asynchronous resolution. The same
// author/title pair cannot be submitted again until its resolution
// finishes; a full queue rejects with ErrQueueFull so the caller can apply
// backpressure.
func (s *Service) Submit(ctx context.Context, title, author, requester string) (model.Request, error) {
	if !s.isStarted() {
		return model.Request{}, ErrNotStarted
	}

	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	if title == "" {
		return model.Request{}, ErrEmptyTitle
	}

	metrics.RecordRequestReceived()

	req := model.Request{
		ID:        uuid.NewString(),
		Title:     title,
		Author:    author,
		Requester: requester,
		TS:        time.Now(),
	}

	key := dedupe.Key(author, title)
	if !s.guard.Acquire(ctx, key) {
		metrics.RecordDuplicateRequest()
		s.logger.Info(ctx, "duplicate request rejected",
			logger.String("title", title),
			logger.String("author", author),
		)
		return model.Request{}, ErrDuplicateRequest
	}
	metrics.UpdateInflightSize(int(s.guard.Size()))

	if !s.queue.Enqueue(ctx, req) {
		s.guard.Release(ctx, key)
		metrics.UpdateInflightSize(int(s.guard.Size()))
		return model.Request{}, ErrQueueFull
	}

	s.logger.Info(ctx, "request accepted",
		logger.String("requestID", req.ID),
		logger.String("title", title),
		logger.String("author", author),
		logger.String("requester", requester),
	)
	return req, nil
}

// RecordOutcome persists a finished resolution and frees its in-flight
// slot. It implements the worker pool's recorder.
func (s *Service) RecordOutcome(ctx context.Context, req model.Request, outcome model.Outcome) {
	outcome.CompletedAt = time.Now()
	if err := s.store.Record(ctx, outcome); err != nil {
		s.logger.Error(ctx, "recording outcome failed",
			logger.String("requestID", req.ID),
			logger.Error(err),
		)
	}

	s.guard.Release(ctx, dedupe.Key(req.Author, req.Title))
	metrics.UpdateInflightSize(int(s.guard.Size()))

	s.logger.Info(ctx, "request finished",
		logger.String("requestID", req.ID),
		logger.String("status", string(outcome.Status)),
		logger.String("reason", string(outcome.Reason)),
		logger.Int("warnings", len(outcome.Warnings)),
	)
}

// Outcome returns the terminal outcome for a request id. A request that is
// still queued or resolving yields repository.ErrNotFound.
func (s *Service) Outcome(ctx context.Context, requestID string) (model.Outcome, error) {
	if !s.isStarted() {
		return model.Outcome{}, ErrNotStarted
	}
	return s.store.Get(ctx, requestID)
}

// Recent returns up to n outcomes, newest first.
func (s *Service) Recent(ctx context.Context, n int) ([]model.Outcome, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	return s.store.Recent(ctx, n)
}

// Stats reports pipeline gauges for the stats endpoint.
func (s *Service) Stats(ctx context.Context) map[string]any {
	if !s.isStarted() {
		return map[string]any{}
	}
	return map[string]any{
		"queue_depth": s.queue.Len(ctx),
		"workers":     s.pool.Size(),
		"inflight":    s.guard.Size(),
		"outcomes":    s.store.Count(ctx),
	}
}

func (s *Service) isStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}
