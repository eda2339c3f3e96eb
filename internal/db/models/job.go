package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Field names for agent job model
const (
	// JobContentItemIDField is the field name for the owning content item
	JobContentItemIDField = "content_item_id"
	// JobLogsField is the field name for the job logs
	JobLogsField = "logs"
	// JobCurrentStepField is the field name for the progress label
	JobCurrentStepField = "current_step"
)

// StepCompleted is the progress label written when the agent returns successfully
const StepCompleted = "Completed"

// JobStatus represents the lifecycle state of an agent job
type JobStatus string

// Job status constants
const (
	// JobStatusPending is reserved for queued dispatch, never written today
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the agent call is in flight
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the agent returned successfully
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the agent call or its bookkeeping failed
	JobStatusFailed JobStatus = "failed"
)

// String returns the string representation of the job status
func (s JobStatus) String() string {
	return string(s)
}

// IsActive reports whether the job has not reached a terminal state
func (s JobStatus) IsActive() bool {
	return s == JobStatusPending || s == JobStatusRunning
}

// ParseJobStatus converts a string to a JobStatus type
func ParseJobStatus(str string) (JobStatus, error) {
	switch JobStatus(strings.ToLower(str)) {
	case JobStatusPending:
		return JobStatusPending, nil
	case JobStatusRunning:
		return JobStatusRunning, nil
	case JobStatusCompleted:
		return JobStatusCompleted, nil
	case JobStatusFailed:
		return JobStatusFailed, nil
	default:
		return "", fmt.Errorf("invalid job status: %s", str)
	}
}

// UnmarshalJSON implements json.Unmarshaler for JobStatus
func (s *JobStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status, err := ParseJobStatus(str)
	if err != nil {
		return err
	}

	*s = status
	return nil
}

// AgentJob is one execution attempt of the agent against a content item
type AgentJob struct {
	ID            string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ContentItemID string       `json:"content_item_id" gorm:"type:varchar(36);not null;index"`
	ContentItem   *ContentItem `json:"-" gorm:"foreignKey:ContentItemID"`
	Status        JobStatus    `json:"status" gorm:"not null;index"`
	Logs          string       `json:"logs" gorm:"type:text"`
	CurrentStep   *string      `json:"current_step,omitempty"`
	CreatedAt     time.Time    `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time    `json:"updated_at" gorm:"index"`
}

// Validate ensures that the job data is valid
func (j *AgentJob) Validate() error {
	if j.ContentItemID == "" {
		return fmt.Errorf("job content_item_id cannot be empty")
	}
	return nil
}

// BeforeCreate is a GORM hook that runs before creating a new job
func (j *AgentJob) BeforeCreate(_ *gorm.DB) error {
	if j.ID == "" {
		j.ID = newID()
	}
	if j.Status == "" {
		j.Status = JobStatusPending
	}
	return j.Validate()
}
