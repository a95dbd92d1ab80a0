package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stagewise/stagewise/internal/domain/model"
)

func sample(name string) Sample {
	return Sample{Name: name, Duration: 12.5, Type: model.SampleAPI}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	defer q.Close()
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, sample("s1")) {
		t.Error("expected enqueue to succeed")
	}

	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	out := q.Dequeue(ctx)
	s := <-out
	if s.Name != "s1" {
		t.Errorf("expected s1, got %v", s.Name)
	}
}

func TestInMemoryQueue_Backpressure(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	defer q.Close()
	ctx := context.Background()

	if !q.Enqueue(ctx, sample("s1")) || !q.Enqueue(ctx, sample("s2")) {
		t.Fatal("expected the first two enqueues to succeed")
	}

	// Queue is full; the third enqueue must fail without blocking.
	done := make(chan bool, 1)
	go func() { done <- q.Enqueue(ctx, sample("s3")) }()

	select {
	case accepted := <-done:
		if accepted {
			t.Error("expected enqueue on a full queue to be rejected")
		}
	case <-time.After(time.Second):
		t.Error("enqueue blocked on a full queue")
	}
}

func TestInMemoryQueue_DequeueOrder(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	names := []string{"a", "b", "c"}
	for _, n := range names {
		if !q.Enqueue(ctx, sample(n)) {
			t.Fatalf("enqueue %s failed", n)
		}
	}
	q.Close()

	out := q.Dequeue(ctx)
	for _, want := range names {
		got, ok := <-out
		if !ok {
			t.Fatalf("channel closed before receiving %s", want)
		}
		if got.Name != want {
			t.Errorf("expected %s, got %s", want, got.Name)
		}
	}
	if _, ok := <-out; ok {
		t.Error("expected dequeue channel to close after the queue closed")
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if err := q.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}

	if q.Enqueue(ctx, sample("late")) {
		t.Error("expected enqueue after close to be rejected")
	}
}
