// Package queue defines the contract for enqueuing and consuming metric
// samples on their way into the bounded recorder.
//
// The queue is the single-writer discipline in front of the sample buffer:
// instrumentation call sites enqueue without blocking and the ingest
// workers drain in order.
package queue

import (
	"context"
	"sync"

	"github.com/stagewise/stagewise/internal/domain/model"
	"github.com/stagewise/stagewise/pkg/metrics"
)

// defaultCapacity bounds the ingest queue when no option overrides it.
const defaultCapacity = 10_000

// Sample is the payload type flowing through the queue.
type Sample = model.MetricSample

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a sample to the queue.
	// Returns false if the queue is full and the sample was not enqueued.
	Enqueue(ctx context.Context, s Sample) bool

	// Dequeue returns a channel that receives samples as they become
	// available. The channel closes when the queue closes.
	Dequeue(ctx context.Context) <-chan Sample

	// Len returns the current number of queued samples.
	Len(ctx context.Context) int

	// Close shuts down the queue. After closing, no new samples can be
	// enqueued and the dequeue channel is closed.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	samples  chan Sample
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.samples = make(chan Sample, q.capacity)

	metrics.UpdateSampleQueueCapacity(q.capacity)
	metrics.UpdateSampleQueueSize(0)
	return q
}

// Enqueue adds a sample without blocking. A full or closed queue returns
// false; callers surface that as backpressure.
func (q *InMemoryQueue) Enqueue(ctx context.Context, s Sample) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordSampleDropped()
		return false
	}

	select {
	case q.samples <- s:
		metrics.UpdateSampleQueueSize(len(q.samples))
		return true
	case <-ctx.Done():
		metrics.RecordSampleDropped()
		return false
	default:
		metrics.RecordSampleDropped()
		return false
	}
}

// Dequeue returns a channel that receives samples in arrival order.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Sample {
	out := make(chan Sample)
	go func() {
		defer close(out)
		for s := range q.samples {
			select {
			case out <- s:
				metrics.UpdateSampleQueueSize(len(q.samples))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued samples.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.samples)
}

// Close shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.samples)
	q.closed = true
	return nil
}
