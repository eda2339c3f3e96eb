package types

import (
	"fmt"
	"strings"
)

// ScanStatus is the per-item outcome of a due scan
type ScanStatus string

const (
	// ScanStatusTriggered means a job was created for the item
	ScanStatusTriggered ScanStatus = "triggered"
	// ScanStatusFailed means the dispatch was rejected for the item
	ScanStatusFailed ScanStatus = "failed"
	// ScanStatusSkipped means a job for the item is still in flight
	ScanStatusSkipped ScanStatus = "skipped"
	// ScanStatusError means triggering the item raised an unexpected error
	ScanStatusError ScanStatus = "error"
)

// DispatchResult reports what a scan did with one due item
type DispatchResult struct {
	ContentID string     `json:"id"`
	Status    ScanStatus `json:"status"`
	JobID     string     `json:"job_id,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// ScanResponse is the body returned by the cron endpoint
type ScanResponse struct {
	Success bool             `json:"success"`
	Results []DispatchResult `json:"results"`
}

// RunAgentRequest asks for a dispatch of an existing content item
type RunAgentRequest struct {
	ContentID string `json:"content_id"`
}

// Validate validates the run request
func (r *RunAgentRequest) Validate() error {
	if strings.TrimSpace(r.ContentID) == "" {
		return fmt.Errorf("content_id is required")
	}
	return nil
}

// RunAgentResponse carries the job created by a dispatch
type RunAgentResponse struct {
	JobID string `json:"job_id"`
}

// DemoRunRequest asks for a demo run on a free topic
type DemoRunRequest struct {
	Topic string `json:"topic"`
}

// Validate validates the demo request
func (r *DemoRunRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return fmt.Errorf("topic is required")
	}
	return nil
}

// DemoRunResponse carries the job and the content item created by a demo run
type DemoRunResponse struct {
	JobID     string `json:"job_id"`
	ContentID string `json:"content_id"`
}
