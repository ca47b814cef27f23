package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"golists/internal/db"
)

// CounterReconciler recomputes denormalized counters. *db.DB implements it.
type CounterReconciler interface {
	ReconcileCounters(ctx context.Context) (db.ReconcileResult, error)
}

// Reconciler periodically corrects drift in the helpful and report counters.
type Reconciler struct {
	db       CounterReconciler
	interval time.Duration
	log      zerolog.Logger
}

// NewReconciler creates a new reconciler.
func NewReconciler(database CounterReconciler, interval time.Duration, log zerolog.Logger) *Reconciler {
	return &Reconciler{db: database, interval: interval, log: log}
}

// Start runs a pass on every tick until ctx is cancelled. The first pass
// waits one interval so startup does not contend with migrations.
func (r *Reconciler) Start(ctx context.Context) {
	r.log.Info().Dur("interval", r.interval).Msg("counter reconciler started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("counter reconciler stopped")
			return
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil {
				r.log.Error().Err(err).Msg("counter reconcile failed")
			}
		}
	}
}

// RunOnce performs a single reconcile pass.
func (r *Reconciler) RunOnce(ctx context.Context) (db.ReconcileResult, error) {
	start := time.Now()
	result, err := r.db.ReconcileCounters(ctx)
	if err != nil {
		return result, err
	}

	event := r.log.Debug()
	if result.VoteCounters > 0 || result.ReportCounters > 0 {
		event = r.log.Info()
	}
	event.
		Int64("vote_counters", result.VoteCounters).
		Int64("report_counters", result.ReportCounters).
		Dur("took", time.Since(start)).
		Msg("counters reconciled")
	return result, nil
}
