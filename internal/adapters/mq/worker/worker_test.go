package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stagewise/stagewise/internal/adapters/mq/queue"
	"github.com/stagewise/stagewise/internal/domain/model"
	"github.com/stagewise/stagewise/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// countingRecorder tracks recorded samples for assertions.
type countingRecorder struct {
	mu      sync.Mutex
	samples []queue.Sample
}

func (r *countingRecorder) RecordSample(s queue.Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, s)
}

func (r *countingRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestWorker_DrainsQueue(t *testing.T) {
	q := queue.NewInMemoryQueue(queue.WithCapacity(10))
	rec := &countingRecorder{}
	w := NewWorker(q, rec, WithName("ingest-test"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	for i := 0; i < 5; i++ {
		if !q.Enqueue(ctx, queue.Sample{Name: "op", Duration: 1, Type: model.SampleAPI}) {
			t.Fatal("enqueue failed")
		}
	}

	waitFor(t, func() bool { return rec.Len() == 5 })

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), time.Second)
	defer cancelShutdown()
	if err := w.Shutdown(shutdownCtx); err != nil {
		t.Errorf("shutdown failed: %v", err)
	}
	q.Close()
}

func TestWorker_StopsWhenQueueCloses(t *testing.T) {
	q := queue.NewInMemoryQueue(queue.WithCapacity(10))
	rec := &countingRecorder{}
	w := NewWorker(q, rec)

	ctx := context.Background()
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	q.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after the queue closed")
	}
}

func TestPool_ProcessesWithAllWorkers(t *testing.T) {
	q := queue.NewInMemoryQueue(queue.WithCapacity(100))
	rec := &countingRecorder{}
	p := NewPool(3, q, rec)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	const n = 50
	for i := 0; i < n; i++ {
		if !q.Enqueue(ctx, queue.Sample{Name: "op", Duration: 1, Type: model.SampleDatabase}) {
			t.Fatal("enqueue failed")
		}
	}

	waitFor(t, func() bool { return rec.Len() == n })

	p.Stop()
	q.Close()
}

func TestPool_DefaultsWorkerCount(t *testing.T) {
	q := queue.NewInMemoryQueue(queue.WithCapacity(1))
	defer q.Close()

	p := NewPool(0, q, &countingRecorder{})
	if len(p.workers) != defaultWorkerCount {
		t.Errorf("expected %d workers, got %d", defaultWorkerCount, len(p.workers))
	}
}
