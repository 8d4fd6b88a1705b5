// Package jobs schedules periodic maintenance with cron.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// TableReconciler recomputes table occupancy from active orders.
type TableReconciler interface {
	ReconcileTables(ctx context.Context) (int, error)
}

// Scheduler runs the background jobs.
type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger
}

// NewScheduler returns a stopped scheduler.
func NewScheduler(log *slog.Logger) *Scheduler {
	return &Scheduler{cron: cron.New(), log: log}
}

// AddTableReconcile runs r on spec (for example "@every 5m").  Each run
// is bounded by timeout.
func (s *Scheduler) AddTableReconcile(spec string, r TableReconciler, timeout time.Duration) error {
	_, err := s.cron.AddFunc(spec, func() { RunTableReconcile(context.Background(), r, timeout, s.log) })
	return err
}

// Start begins running jobs in their own goroutines.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("job scheduler started", "entries", len(s.cron.Entries()))
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// RunTableReconcile performs one reconciliation and logs the outcome.
func RunTableReconcile(ctx context.Context, r TableReconciler, timeout time.Duration, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	changed, err := r.ReconcileTables(ctx)
	if err != nil {
		log.Error("table reconcile failed", "err", err, "changed", changed)
		return
	}
	if changed > 0 {
		log.Info("table reconcile fixed tables", "changed", changed)
	} else {
		log.Debug("table reconcile: nothing to fix")
	}
}
