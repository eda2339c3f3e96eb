package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/celestiaorg/quill/internal/db/models"
)

// jobSummaryColumns are the job columns without the unbounded logs
var jobSummaryColumns = []string{"id", "content_item_id", "status", "current_step", "created_at", "updated_at"}

// JobRepository provides access to agent job database operations
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new job repository instance
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create creates a new job in the database
func (r *JobRepository) Create(ctx context.Context, job *models.AgentJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// GetByID retrieves a job by its ID
func (r *JobRepository) GetByID(ctx context.Context, id string) (*models.AgentJob, error) {
	var job models.AgentJob
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("job not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// GetWithOwner retrieves a job with its content item, website and user
func (r *JobRepository) GetWithOwner(ctx context.Context, id string) (*models.AgentJob, error) {
	var job models.AgentJob
	err := r.db.WithContext(ctx).
		Preload("ContentItem.Website.User").
		Where("id = ?", id).
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("job not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// UpdateFields applies a partial update to a job
func (r *JobRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.AgentJob{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update job: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("job not found: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

// LatestForContent returns the most recently created job of a content item,
// without its logs. It returns nil when the item has no jobs.
func (r *JobRepository) LatestForContent(ctx context.Context, contentID string) (*models.AgentJob, error) {
	var jobs []models.AgentJob
	err := r.db.WithContext(ctx).
		Select(jobSummaryColumns).
		Where("content_item_id = ?", contentID).
		Order("created_at DESC, id DESC").
		Limit(1).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get latest job: %w", err)
	}
	if len(jobs) == 0 {
		return nil, nil
	}
	return &jobs[0], nil
}

// LatestForContents returns the latest job of each given content item, keyed by item ID
func (r *JobRepository) LatestForContents(ctx context.Context, contentIDs []string) (map[string]models.AgentJob, error) {
	latest := make(map[string]models.AgentJob, len(contentIDs))
	if len(contentIDs) == 0 {
		return latest, nil
	}

	var jobs []models.AgentJob
	err := r.db.WithContext(ctx).
		Select(jobSummaryColumns).
		Where("content_item_id IN ?", contentIDs).
		Order("created_at DESC, id DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list latest jobs: %w", err)
	}

	for _, job := range jobs {
		if _, seen := latest[job.ContentItemID]; !seen {
			latest[job.ContentItemID] = job
		}
	}
	return latest, nil
}

// ListByContent retrieves every job of a content item, newest first
func (r *JobRepository) ListByContent(ctx context.Context, contentID string) ([]models.AgentJob, error) {
	var jobs []models.AgentJob
	err := r.db.WithContext(ctx).
		Select(jobSummaryColumns).
		Where("content_item_id = ?", contentID).
		Order("created_at DESC, id DESC").
		Find(&jobs).Error
	return jobs, err
}

// ListStale retrieves active jobs that have not been updated since cutoff
func (r *JobRepository) ListStale(ctx context.Context, cutoff time.Time) ([]models.AgentJob, error) {
	var jobs []models.AgentJob
	err := r.db.WithContext(ctx).
		Where("status IN ? AND updated_at < ?",
			[]models.JobStatus{models.JobStatusPending, models.JobStatusRunning}, cutoff.UTC()).
		Order("updated_at ASC").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stale jobs: %w", err)
	}
	return jobs, nil
}

// FailIfActive marks a job as failed with the given logs unless it already
// reached a terminal state. It reports whether the job was updated.
func (r *JobRepository) FailIfActive(ctx context.Context, id, logs string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.AgentJob{}).
		Where("id = ? AND status IN ?", id,
			[]models.JobStatus{models.JobStatusPending, models.JobStatusRunning}).
		Updates(map[string]interface{}{
			models.StatusField:  models.JobStatusFailed,
			models.JobLogsField: logs,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to fail job: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
