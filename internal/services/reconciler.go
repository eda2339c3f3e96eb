package services

import (
	"context"
	"fmt"
	"time"

	"github.com/celestiaorg/quill/internal/db/repos"
	"github.com/celestiaorg/quill/internal/logger"
	"github.com/celestiaorg/quill/internal/metrics"
)

// Reconciler fails jobs that stopped reporting, such as runs lost in a restart
type Reconciler struct {
	jobs       *repos.JobRepository
	staleAfter time.Duration
	metrics    *metrics.Metrics
}

// NewReconciler creates a new reconciler
func NewReconciler(jobs *repos.JobRepository, staleAfter time.Duration, m *metrics.Metrics) *Reconciler {
	if m == nil {
		m = metrics.NewMetrics(nil)
	}
	return &Reconciler{jobs: jobs, staleAfter: staleAfter, metrics: m}
}

// Sweep marks active jobs not updated for staleAfter as failed and returns how
// many it changed. Their content items are left as they are.
func (r *Reconciler) Sweep(ctx context.Context, now time.Time) (int64, error) {
	stale, err := r.jobs.ListStale(ctx, now.Add(-r.staleAfter))
	if err != nil {
		return 0, err
	}

	var failed int64
	note := fmt.Sprintf("[System] Job marked as failed: orphaned, no update for %s.", r.staleAfter)
	for _, job := range stale {
		logs := note
		if job.Logs != "" {
			logs = job.Logs + "\n" + note
		}
		updated, err := r.jobs.FailIfActive(ctx, job.ID, logs)
		if err != nil {
			logger.Errorf("Failed to reconcile job %s: %v", job.ID, err)
			continue
		}
		if updated {
			failed++
			logger.WarnWithFields("Orphaned job marked as failed", map[string]interface{}{
				"job_id":     job.ID,
				"content_id": job.ContentItemID,
				"updated_at": job.UpdatedAt,
			})
		}
	}

	r.metrics.ReconciledJobsTotal.Add(float64(failed))
	return failed, nil
}
