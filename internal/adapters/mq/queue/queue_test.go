package queue

import (
	"context"
	"testing"

	"github.com/tourstat/compass/internal/domain/model"
)

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	job1 := Job{Entity: model.Entity{ID: "FRA", Name: "France"}}
	if !q.Enqueue(ctx, job1) {
		t.Error("expected enqueue to succeed")
	}

	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	jobs := q.Dequeue(ctx)
	job := <-jobs
	if job.Entity.ID != "FRA" {
		t.Errorf("expected FRA, got %v", job.Entity.ID)
	}

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, Job{Entity: model.Entity{ID: "FRA"}}) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, Job{Entity: model.Entity{ID: "THA"}}) {
		t.Error("expected enqueue to succeed")
	}

	// Full queue rejects without blocking.
	if q.Enqueue(ctx, Job{Entity: model.Entity{ID: "FJI"}}) {
		t.Error("expected enqueue to fail when full")
	}

	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	if !q.Enqueue(ctx, Job{Entity: model.Entity{ID: "FRA"}}) {
		t.Error("expected enqueue to succeed")
	}
	if err := q.Close(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}

	// Closed queue rejects new jobs but keeps the buffer consumable.
	if q.Enqueue(ctx, Job{Entity: model.Entity{ID: "THA"}}) {
		t.Error("expected enqueue to fail after close")
	}

	jobs := q.Dequeue(ctx)
	job, ok := <-jobs
	if !ok || job.Entity.ID != "FRA" {
		t.Errorf("expected buffered FRA job, got %v ok=%v", job.Entity.ID, ok)
	}
	if _, ok := <-jobs; ok {
		t.Error("expected channel to be closed after drain")
	}

	if err := q.Close(); err != ErrClosed {
		t.Errorf("expected ErrClosed on double close, got %v", err)
	}
}

func TestInMemoryQueue_DefaultCapacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(0))
	if cap(q.jobs) != defaultCapacity {
		t.Errorf("expected default capacity %d, got %d", defaultCapacity, cap(q.jobs))
	}
}
