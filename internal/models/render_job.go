// Package models holds the persisted reelcast records.
package models

import "time"

// JobStatus is the coarse state of an async render job.
type JobStatus string

const (
	JobQueued  JobStatus = "QUEUED"
	JobRunning JobStatus = "RUNNING"
	JobDone    JobStatus = "DONE"
	JobFailed  JobStatus = "FAILED"
)

// Valid reports whether s is a known status.
func (s JobStatus) Valid() bool {
	switch s {
	case JobQueued, JobRunning, JobDone, JobFailed:
		return true
	}
	return false
}

// RenderJob is one row of render_jobs. Phase and Message mirror the render
// machine while the job runs.
type RenderJob struct {
	ID     string    `json:"id"`
	Name   string    `json:"name,omitempty"`
	Text   string    `json:"text"`
	Status JobStatus `json:"status"`

	Phase   string `json:"phase"`
	Message string `json:"message,omitempty"`

	EstimatedSeconds int     `json:"estimated_seconds,omitempty"`
	DurationSeconds  float64 `json:"duration_seconds,omitempty"`
	HasAudio         bool    `json:"has_audio"`

	StorageProvider string `json:"storage_provider,omitempty"`
	VideoObjectKey  string `json:"video_object_key,omitempty"`
	VideoSizeBytes  int64  `json:"video_size_bytes,omitempty"`

	ErrorCode string `json:"error_code,omitempty"`
	ErrorText string `json:"error,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// JobOutput is what a finished job records.
type JobOutput struct {
	EstimatedSeconds int
	DurationSeconds  float64
	HasAudio         bool
	StorageProvider  string
	VideoObjectKey   string
	VideoSizeBytes   int64
}
