package repository

import (
	"context"
	"time"

	"paper-assistant/internal/domain/model"
)

// TypoCheckQueueRepository persists typo check jobs.
//
// Enqueue must atomically enforce the per-user active-job cap: when the
// user already has model.MaxActiveJobsPerUser jobs in pending or
// processing, it returns domain.ErrTooManyPendingJobs and inserts
// nothing.
type TypoCheckQueueRepository interface {
	Enqueue(ctx context.Context, tx Tx, job *model.TypoCheckJob) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.TypoCheckJob, error)
	ClaimNextPending(ctx context.Context) (*model.TypoCheckJob, error)
	UpdateProgress(ctx context.Context, tx Tx, jobID string, p model.Progress) error
	MarkCompleted(ctx context.Context, tx Tx, job *model.TypoCheckJob, resultID string) error
	FailOrRetry(ctx context.Context, tx Tx, job *model.TypoCheckJob, jobErr error) error
	MarkFailed(ctx context.Context, tx Tx, job *model.TypoCheckJob, jobErr error) error
	Cancel(ctx context.Context, tx Tx, jobID, userID string) error
	SweepStale(ctx context.Context, olderThan time.Duration) (int, error)
}
