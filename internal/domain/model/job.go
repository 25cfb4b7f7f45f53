package model

import "time"

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// DefaultMaxRetries bounds how many attempts a job gets before it is
// marked failed for good.
const DefaultMaxRetries = 3

// Job carries the fields shared by every queued unit of work. Concrete
// job types embed it.
type Job struct {
	ID           string
	Priority     int
	Status       JobStatus
	ErrorMessage string
	RetryCount   int
	MaxRetries   int
	CreatedAt    time.Time
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

// Terminal reports whether the job has reached a state it can never
// leave.
func (j *Job) Terminal() bool {
	switch j.Status {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// Progress is the per-chunk progress of a typo check job.
type Progress struct {
	CurrentChunk int `json:"current_chunk"`
	TotalChunks  int `json:"total_chunks"`
}

// Percentage is 0 when no chunks are known yet.
func (p Progress) Percentage() int {
	if p.TotalChunks <= 0 {
		return 0
	}
	return p.CurrentChunk * 100 / p.TotalChunks
}

// PollStatus is the read-only view producers poll while a job runs.
type PollStatus struct {
	ID           string     `json:"id"`
	Status       JobStatus  `json:"status"`
	Progress     *PollProgress `json:"progress,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	ResultRef    string     `json:"result_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

type PollProgress struct {
	Current    int `json:"current"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}
