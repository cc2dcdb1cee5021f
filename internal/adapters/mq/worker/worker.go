// Package worker runs persistence jobs taken off the frame loop.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"

	"github.com/okian/kinetic/internal/adapters/mq/queue"
	"github.com/okian/kinetic/pkg/logger"
	"github.com/okian/kinetic/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount  = 2
	poolShutdownTimeout = 30 * time.Second
)

// Handler performs one job.
type Handler interface {
	Handle(ctx context.Context, j queue.Job) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, j queue.Job) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, j queue.Job) error { return f(ctx, j) }

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes jobs until its queue is drained or its context ends.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown waits for the worker to finish its queued jobs.
	Shutdown(ctx context.Context) error
}

// Counters aggregates job outcomes across workers.
type Counters struct {
	processed atomic.Int64
	failed    atomic.Int64
}

// Processed returns the number of jobs that completed successfully.
func (c *Counters) Processed() int64 { return c.processed.Load() }

// Failed returns the number of jobs whose handler returned an error.
func (c *Counters) Failed() int64 { return c.failed.Load() }

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	handler  Handler
	name     string
	counters *Counters

	done chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, h Handler, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		handler:  h,
		name:     "worker",
		counters: &Counters{},
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop. Queued jobs are drained after the queue is
// closed; a cancelled context abandons them.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, j); err != nil {
				w.logger.Error(ctx, "persistence job failed",
					logger.String("job_id", j.ID.String()),
					logger.String("kind", string(j.Kind)),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown waits for Run to return.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("%s shutdown timed out: %w", w.name, ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, j queue.Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := w.handler.Handle(ctx, j); err != nil {
		w.counters.failed.Add(1)
		metrics.RecordWorkerError()
		metrics.RecordJob(string(j.Kind), "error")
		metrics.RecordErrorByComponent("worker", string(j.Kind))
		return fmt.Errorf("job %s: %w", j.ID, err)
	}

	w.counters.processed.Add(1)
	metrics.RecordJob(string(j.Kind), "ok")
	w.logger.Debug(ctx, "persistence job done",
		logger.String("job_id", j.ID.String()),
		logger.String("kind", string(j.Kind)),
		logger.Int("frames", len(j.Frames)),
		logger.Duration("wait", start.Sub(j.Enqueued)),
	)
	return nil
}

// Pool manages multiple workers sharing one queue and one set of counters.
type Pool struct {
	workers  []*InMemoryWorker
	queue    Queue
	counters *Counters

	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, q Queue, h Handler) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    q,
		counters: &Counters{},
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := range workerCount {
		pool.workers[i] = NewInMemoryWorker(
			q,
			h,
			WithName("worker-"+strconv.Itoa(i)),
			WithCounters(pool.counters),
		)
	}

	metrics.UpdateWorkerActiveCount(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Counters returns the pool's job counters.
func (p *Pool) Counters() *Counters { return p.counters }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	var errs error
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("close queue: %w", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for _, w := range p.workers {
		errs = multierr.Append(errs, w.Shutdown(shutdownCtx))
	}
	metrics.UpdateWorkerActiveCount(0)
	if errs != nil {
		p.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(errs))
	}
	return errs
}
