package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celestiaorg/quill/internal/db/models"
)

func (s *TestSetup) ageJob(jobID string, age time.Duration) {
	err := s.DB.Model(&models.AgentJob{}).
		Where("id = ?", jobID).
		UpdateColumn(models.UpdatedAtField, time.Now().UTC().Add(-age)).Error
	require.NoError(s.t, err)
}

func TestReconciler_Sweep(t *testing.T) {
	s := NewTestSetup(t, defaultOptions())
	item, _ := s.CreateReadyContent()

	orphan := &models.AgentJob{ContentItemID: item.ID, Status: models.JobStatusRunning, Logs: SeedLog}
	fresh := &models.AgentJob{ContentItemID: item.ID, Status: models.JobStatusRunning}
	finished := &models.AgentJob{ContentItemID: item.ID, Status: models.JobStatusCompleted}
	for _, job := range []*models.AgentJob{orphan, fresh, finished} {
		require.NoError(t, s.JobRepo.Create(context.Background(), job))
	}
	s.ageJob(orphan.ID, 2*time.Hour)
	s.ageJob(finished.ID, 2*time.Hour)

	n, err := s.Reconciler.Sweep(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	swept := s.Job(orphan.ID)
	assert.Equal(t, models.JobStatusFailed, swept.Status)
	assert.Contains(t, swept.Logs, SeedLog)
	assert.Contains(t, swept.Logs, "[System]")
	assert.Contains(t, swept.Logs, "orphaned")

	assert.Equal(t, models.JobStatusRunning, s.Job(fresh.ID).Status)
	assert.Equal(t, models.JobStatusCompleted, s.Job(finished.ID).Status)
	assert.Equal(t, models.ContentStatusScheduled, s.Item(item.ID).Status)
	assert.Equal(t, float64(1), testutil.ToFloat64(s.Metrics.ReconciledJobsTotal))

	n, err = s.Reconciler.Sweep(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOrphanedJobStaysRunningByDefault(t *testing.T) {
	s := NewTestSetup(t, defaultOptions())
	item, _ := s.CreateReadyContent()

	orphan := &models.AgentJob{ContentItemID: item.ID, Status: models.JobStatusRunning, Logs: SeedLog}
	require.NoError(t, s.JobRepo.Create(context.Background(), orphan))
	s.ageJob(orphan.ID, 48*time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	scheduler, err := NewScheduler(ctx, SchedulerOptions{ScanSchedule: "0 0 1 1 *"}, s.Scanner, s.Reconciler)
	require.NoError(t, err)
	assert.Equal(t, 1, scheduler.Entries(), "only the scan is scheduled")

	var wg sync.WaitGroup
	wg.Add(1)
	go LaunchScheduler(ctx, &wg, scheduler)
	cancel()
	wg.Wait()

	assert.Equal(t, models.JobStatusRunning, s.Job(orphan.ID).Status)
}

func TestNewScheduler(t *testing.T) {
	s := NewTestSetup(t, defaultOptions())

	scheduler, err := NewScheduler(context.Background(), SchedulerOptions{
		ScanSchedule:      "* * * * *",
		ReconcileEnabled:  true,
		ReconcileSchedule: "*/5 * * * *",
	}, s.Scanner, s.Reconciler)
	require.NoError(t, err)
	assert.Equal(t, 2, scheduler.Entries())

	_, err = NewScheduler(context.Background(), SchedulerOptions{ScanSchedule: "every minute"}, s.Scanner, s.Reconciler)
	assert.Error(t, err)

	_, err = NewScheduler(context.Background(), SchedulerOptions{
		ScanSchedule:      "* * * * *",
		ReconcileEnabled:  true,
		ReconcileSchedule: "*/5 * * *",
	}, s.Scanner, s.Reconciler)
	assert.Error(t, err)
}
