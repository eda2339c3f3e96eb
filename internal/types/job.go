package types

import (
	"time"

	"github.com/celestiaorg/quill/internal/db/models"
)

// JobStatusResponse is the read model of an agent job returned to pollers.
// Logs may be truncated.
type JobStatusResponse struct {
	ID            string           `json:"id"`
	ContentItemID string           `json:"content_item_id"`
	Status        models.JobStatus `json:"status"`
	Logs          string           `json:"logs"`
	CurrentStep   *string          `json:"current_step,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	PublishedURL  *string          `json:"published_url,omitempty"`
}

// IsFinished reports whether the job reached a terminal status
func (r *JobStatusResponse) IsFinished() bool {
	return !r.Status.IsActive()
}
