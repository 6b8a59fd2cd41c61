// Package worker runs request resolutions pulled off the queue and records
// their outcomes.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/foliolabs/folio/internal/domain/model"
	"github.com/foliolabs/folio/pkg/logger"
	"github.com/foliolabs/folio/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount  = 4
	poolShutdownTimeout = 30 * time.Second
)

// Resolver drives one request through author/book resolution. The returned
// error is reserved for conditions with no fallback (backend
// misconfiguration); every ordinary failure lands in the Outcome itself.
type Resolver interface {
	Resolve(ctx context.Context, req model.Request) (model.Outcome, error)
}

// Recorder persists a finished outcome and releases any in-flight state
// held for the request.
type Recorder interface {
	RecordOutcome(ctx context.Context, req model.Request, outcome model.Outcome)
}

// Queue defines how workers receive requests.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Request
}

// Worker consumes requests until stopped.
type Worker struct {
	queue    Queue
	resolver Resolver
	recorder Recorder
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewWorker creates a worker with configuration options.
func NewWorker(queue Queue, resolver Resolver, recorder Recorder, opts ...Option) *Worker {
	w := &Worker{
		queue:    queue,
		resolver: resolver,
		recorder: recorder,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run consumes requests until the context is canceled or Shutdown is
// called.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	requests := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case req, ok := <-requests:
			if !ok {
				return
			}
			w.process(ctx, req)
		}
	}
}

// Shutdown stops the worker and waits for the in-flight resolution.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "worker shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process resolves a single request and records its outcome. A resolver
// error means the backend is misconfigured; it is folded into an error
// outcome so the caller still sees a terminal state.
func (w *Worker) process(ctx context.Context, req model.Request) {
	start := time.Now()

	outcome, err := w.resolver.Resolve(ctx, req)
	if err != nil {
		w.logger.Error(ctx, "resolution aborted",
			logger.String("requestID", req.ID),
			logger.String("title", req.Title),
			logger.Error(err),
		)
		outcome = model.Outcome{
			RequestID: req.ID,
			Title:     req.Title,
			Author:    req.Author,
			Status:    model.StatusError,
			Warnings:  []string{err.Error()},
		}
	}

	metrics.RecordResolutionLatency(float64(time.Since(start).Milliseconds()))
	metrics.RecordOutcome(string(outcome.Status))

	w.recorder.RecordOutcome(ctx, req, outcome)
}

// Pool manages a fixed set of workers draining one queue.
type Pool struct {
	workers []*Worker
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers.
func NewPool(workerCount int, queue Queue, resolver Resolver, recorder Recorder) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
		if workerCount > defaultWorkerCount {
			workerCount = defaultWorkerCount
		}
	}

	pool := &Pool{
		workers: make([]*Worker, workerCount),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewWorker(queue, resolver, recorder,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Stop shuts all workers down, bounded by the pool shutdown timeout.
func (p *Pool) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), poolShutdownTimeout)
	defer cancel()

	for _, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil {
			p.logger.Warn(ctx, "worker did not stop cleanly",
				logger.String("worker", w.name),
				logger.Error(err),
			)
		}
	}
	p.logger.Info(ctx, "worker pool stopped")
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return len(p.workers)
}
