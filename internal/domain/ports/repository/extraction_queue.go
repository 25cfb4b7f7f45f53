package repository

import (
	"context"
	"time"

	"paper-assistant/internal/domain/model"
)

// ExtractionQueueRepository persists extraction jobs.
//
// ClaimNextPending atomically fetches the eligible pending job with the
// highest priority (FIFO within a priority) and marks it processing, so
// no second scheduler tick can own the same job.
type ExtractionQueueRepository interface {
	Enqueue(ctx context.Context, tx Tx, job *model.ExtractionJob) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.ExtractionJob, error)
	NextPending(ctx context.Context) (*model.ExtractionJob, error)
	ClaimNextPending(ctx context.Context) (*model.ExtractionJob, error)
	MarkCompleted(ctx context.Context, tx Tx, job *model.ExtractionJob) error
	FailOrRetry(ctx context.Context, tx Tx, job *model.ExtractionJob, jobErr error) error
	MarkFailed(ctx context.Context, tx Tx, job *model.ExtractionJob, jobErr error) error
	SweepStale(ctx context.Context, olderThan time.Duration) (int, error)
}
