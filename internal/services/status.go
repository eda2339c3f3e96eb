package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/celestiaorg/quill/internal/auth"
	"github.com/celestiaorg/quill/internal/config"
	"github.com/celestiaorg/quill/internal/db/models"
	"github.com/celestiaorg/quill/internal/db/repos"
	"github.com/celestiaorg/quill/internal/types"
)

// TruncationMarker prefixes logs that were cut to the read limit
const TruncationMarker = "...(truncated)...\n"

// StatusReader serves job status to pollers
type StatusReader struct {
	jobs     *repos.JobRepository
	logLimit int
}

// NewStatusReader creates a new status reader returning at most logLimit
// characters of logs
func NewStatusReader(jobs *repos.JobRepository, logLimit int) *StatusReader {
	if logLimit <= 0 {
		logLimit = config.DefaultStatusLogLimit
	}
	return &StatusReader{jobs: jobs, logLimit: logLimit}
}

// Read returns the status of a job the principal is allowed to see
func (r *StatusReader) Read(ctx context.Context, p *auth.Principal, jobID string) (*types.JobStatusResponse, error) {
	job, err := r.jobs.GetWithOwner(ctx, jobID)
	if err != nil {
		return nil, wrapLookup("job", jobID, err)
	}

	if err := auth.Authorize(p, jobOwner(job)); err != nil {
		return nil, err
	}
	return r.toResponse(job, false), nil
}

// ReadDemo returns the status of a demo job. Jobs of items that belong to a
// website are reported as missing.
func (r *StatusReader) ReadDemo(ctx context.Context, jobID string) (*types.JobStatusResponse, error) {
	job, err := r.jobs.GetWithOwner(ctx, jobID)
	if err != nil {
		return nil, wrapLookup("job", jobID, err)
	}
	if job.ContentItem == nil || job.ContentItem.WebsiteID != nil {
		return nil, fmt.Errorf("%w: demo job %s", ErrNotFound, jobID)
	}
	return r.toResponse(job, true), nil
}

func (r *StatusReader) toResponse(job *models.AgentJob, withURL bool) *types.JobStatusResponse {
	resp := &types.JobStatusResponse{
		ID:            job.ID,
		ContentItemID: job.ContentItemID,
		Status:        job.Status,
		Logs:          TruncateLogs(job.Logs, r.logLimit),
		CurrentStep:   job.CurrentStep,
		CreatedAt:     job.CreatedAt,
		UpdatedAt:     job.UpdatedAt,
	}
	if withURL && job.ContentItem != nil {
		resp.PublishedURL = job.ContentItem.PublishedURL
	}
	return resp
}

func jobOwner(job *models.AgentJob) string {
	if job.ContentItem == nil || job.ContentItem.Website == nil {
		return ""
	}
	return job.ContentItem.Website.UserID
}

// TruncateLogs keeps the last limit characters of logs behind TruncationMarker
// when logs is longer than limit
func TruncateLogs(logs string, limit int) string {
	if utf8.RuneCountInString(logs) <= limit {
		return logs
	}
	// walk back limit runes from the end
	cut := len(logs)
	for i := 0; i < limit; i++ {
		_, size := utf8.DecodeLastRuneInString(logs[:cut])
		cut -= size
	}
	return TruncationMarker + logs[cut:]
}
