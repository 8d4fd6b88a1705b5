package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type countingReconciler struct {
	calls atomic.Int32
	err   error
}

func (c *countingReconciler) ReconcileTables(ctx context.Context) (int, error) {
	c.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("no deadline")
	}
	return 1, c.err
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestAddTableReconcileRejectsBadSpec(t *testing.T) {
	s := NewScheduler(quiet())
	if err := s.AddTableReconcile("not a spec", &countingReconciler{}, time.Second); err == nil {
		t.Fatal("expected error for invalid spec")
	}
}

func TestSchedulerRunsJob(t *testing.T) {
	r := &countingReconciler{}
	s := NewScheduler(quiet())
	if err := s.AddTableReconcile("@every 1s", r, time.Second); err != nil {
		t.Fatalf("AddTableReconcile: %v", err)
	}
	s.Start()
	defer s.Stop(context.Background())

	deadline := time.Now().Add(3 * time.Second)
	for r.calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("job never ran")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestRunTableReconcileAppliesTimeout(t *testing.T) {
	r := &countingReconciler{err: errors.New("db down")}
	RunTableReconcile(context.Background(), r, time.Second, quiet())
	if r.calls.Load() != 1 {
		t.Fatalf("calls = %d", r.calls.Load())
	}
}
