// Package worker drains the sample ingest queue into the bounded recorder.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/stagewise/stagewise/internal/adapters/mq/queue"
	"github.com/stagewise/stagewise/pkg/logger"
	"github.com/stagewise/stagewise/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount    = 4
	workerShutdownTimeout = 5 * time.Second
)

// Recorder accepts drained samples. Satisfied by perf.Recorder.
type Recorder interface {
	RecordSample(s queue.Sample)
	Len() int
}

// Worker consumes samples from the queue and records them.
type Worker struct {
	queue    queue.Queue
	recorder Recorder
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewWorker creates a worker with configuration options.
func NewWorker(q queue.Queue, rec Recorder, opts ...Option) *Worker {
	w := &Worker{
		queue:    q,
		recorder: rec,
		name:     "ingest",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("ingest"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run starts the worker loop until ctx is canceled, the queue closes, or
// Shutdown is called.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	samples := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case s, ok := <-samples:
			if !ok {
				return
			}
			w.recorder.RecordSample(s)
			metrics.RecordSampleRecorded()
			metrics.UpdateBufferSize(w.recorder.Len())
		}
	}
}

// Shutdown stops the worker, waiting for the loop to drain or ctx to end.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker shutdown timed out: %w", ctx.Err())
	}
}

// Pool manages a fixed set of ingest workers.
type Pool struct {
	workers []*Worker
	logger  logger.Logger
}

// NewPool creates workerCount workers over the same queue and recorder.
func NewPool(workerCount int, q queue.Queue, rec Recorder) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	p := &Pool{
		workers: make([]*Worker, workerCount),
		logger:  logger.Get().Named("ingest-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewWorker(q, rec, WithName("ingest-"+strconv.Itoa(i)))
	}

	metrics.UpdateIngestWorkerCount(workerCount)
	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop stops all workers, bounding the wait per worker.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		ctx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
		if err := w.Shutdown(ctx); err != nil {
			p.logger.Warn(ctx, "worker did not stop cleanly", logger.String("worker", w.name), logger.Error(err))
		}
		cancel()
	}
}
