// Package queue hands persistence jobs from the frame loop to background
// workers through a bounded in-memory channel.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/kinetic/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 64
	defaultBufferSize    = 64
)

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job without blocking.
	// Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, j Job) bool

	// Dequeue returns a channel delivering jobs. It is closed once the queue
	// is closed and drained.
	Dequeue(ctx context.Context) <-chan Job

	// Len returns the current number of queued jobs.
	Len(ctx context.Context) int

	// Close stops accepting jobs. Queued jobs are still delivered.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	jobs       chan Job
	capacity   int
	bufferSize int
	mu         sync.RWMutex
	closed     bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity:   defaultQueueCapacity,
		bufferSize: defaultBufferSize,
	}

	for _, opt := range opts {
		opt(q)
	}

	if q.bufferSize < q.capacity {
		q.bufferSize = q.capacity
	}
	q.jobs = make(chan Job, q.bufferSize)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Capacity returns the maximum number of queued jobs.
func (q *InMemoryQueue) Capacity() int { return q.capacity }

// Enqueue adds a job to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) bool { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordQueueProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	if len(q.jobs) >= q.capacity {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "capacity_exceeded")
		return false
	}

	select {
	case q.jobs <- j:
		metrics.RecordQueueEnqueue()
		q.observe()
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that will receive jobs as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Job {
	out := make(chan Job)
	go func() {
		defer close(out)
		for j := range q.jobs {
			select {
			case out <- j:
				metrics.RecordQueueDequeue()
				q.observe()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued jobs.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return q.observe()
}

func (q *InMemoryQueue) observe() int {
	size := len(q.jobs)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
	return size
}

// Close stops the queue from accepting jobs.
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

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
