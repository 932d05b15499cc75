package model

import "time"

// JobStatus is the lifecycle state of a generation job
type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusComplete   JobStatus = "complete"
	JobStatusError      JobStatus = "error"
)

// Job represents a single generation request and its lifecycle state.
// A job record is created at submission time and mutated only by the
// background task that owns it; it is never deleted.
type Job struct {
	ID             string     `json:"id"`
	Status         JobStatus  `json:"status"`
	Progress       string     `json:"progress,omitempty"`
	Filename       string     `json:"filename,omitempty"`
	ReportFilename string     `json:"reportFilename,omitempty"`
	Error          string     `json:"error,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}
