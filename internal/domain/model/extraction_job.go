package model

import (
	"time"

	"paper-assistant/internal/domain"

	"github.com/google/uuid"
)

// ExtractionJob queues a document for page-text extraction.
type ExtractionJob struct {
	Job
	DocumentID string
}

// NewExtractionJob creates a pending extraction job for a document.
// Higher priority is processed first; equal priorities run FIFO.
func NewExtractionJob(documentID string, priority int) (*ExtractionJob, error) {
	if documentID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &ExtractionJob{
		Job: Job{
			ID:         uuid.NewString(),
			Priority:   priority,
			Status:     JobStatusPending,
			MaxRetries: DefaultMaxRetries,
			CreatedAt:  time.Now().UTC(),
		},
		DocumentID: documentID,
	}, nil
}

// PollView projects the job into the read-only polling shape.
func (j *ExtractionJob) PollView() PollStatus {
	return PollStatus{
		ID:           j.ID,
		Status:       j.Status,
		ErrorMessage: j.ErrorMessage,
		CreatedAt:    j.CreatedAt,
		CompletedAt:  j.CompletedAt,
	}
}
