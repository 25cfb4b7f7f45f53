package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"paper-assistant/internal/domain"
	"paper-assistant/internal/domain/model"
	"paper-assistant/internal/domain/ports/repository"
)

var _ repository.ExtractionQueueRepository = (*extractionQueueRepo)(nil)

type extractionQueueRepo struct {
	pool *pgxpool.Pool
	tm   repository.TransactionManager
}

func NewExtractionQueueRepo(pool *pgxpool.Pool, tm repository.TransactionManager) *extractionQueueRepo {
	return &extractionQueueRepo{pool: pool, tm: tm}
}

const extractionJobColumns = `
id, document_id, priority, status, error_message, retry_count, max_retries, created_at, started_at, completed_at`

func (r *extractionQueueRepo) Enqueue(ctx context.Context, tx repository.Tx, job *model.ExtractionJob) error {
	const q = `
INSERT INTO extraction_jobs (id, document_id, priority, status, error_message, retry_count, max_retries, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`

	_, err := execSQL(ctx, r.pool, tx, q,
		job.ID, job.DocumentID, job.Priority, job.Status, job.ErrorMessage,
		job.RetryCount, job.MaxRetries, job.CreatedAt)
	return err
}

func (r *extractionQueueRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ExtractionJob, error) {
	const q = `SELECT ` + extractionJobColumns + ` FROM extraction_jobs WHERE id = $1;`
	row, err := queryRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanExtractionJob(row)
}

// NextPending peeks at the eligible job without claiming it.
func (r *extractionQueueRepo) NextPending(ctx context.Context) (*model.ExtractionJob, error) {
	const q = `
SELECT ` + extractionJobColumns + `
FROM extraction_jobs
WHERE status = 'pending'
ORDER BY priority DESC, created_at ASC
LIMIT 1;`
	row, err := queryRow(ctx, r.pool, repository.NoTX, q)
	if err != nil {
		return nil, err
	}
	return scanExtractionJob(row)
}

// ClaimNextPending atomically fetches the top pending job and marks it
// processing so no other tick can pick it up.
func (r *extractionQueueRepo) ClaimNextPending(ctx context.Context) (*model.ExtractionJob, error) {
	var job *model.ExtractionJob

	err := r.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		const fetch = `
SELECT ` + extractionJobColumns + `
FROM extraction_jobs
WHERE status = 'pending'
ORDER BY priority DESC, created_at ASC
LIMIT 1
FOR UPDATE SKIP LOCKED;`

		row, err := queryRow(ctx, r.pool, tx, fetch)
		if err != nil {
			return err
		}
		fetched, err := scanExtractionJob(row)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		fetched.Status = model.JobStatusProcessing
		fetched.StartedAt = &now

		const claim = `UPDATE extraction_jobs SET status = $2, started_at = $3 WHERE id = $1;`
		if _, err := execSQL(ctx, r.pool, tx, claim, fetched.ID, fetched.Status, fetched.StartedAt); err != nil {
			return err
		}
		job = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// MarkCompleted finalizes a claimed job. The status guard keeps a job
// that was swept to failed while the worker held it from flipping back.
func (r *extractionQueueRepo) MarkCompleted(ctx context.Context, tx repository.Tx, job *model.ExtractionJob) error {
	now := time.Now().UTC()
	job.Status = model.JobStatusCompleted
	job.CompletedAt = &now

	const q = `UPDATE extraction_jobs SET status = $2, completed_at = $3, error_message = ''
WHERE id = $1 AND status = 'processing';`
	tag, err := execSQL(ctx, r.pool, tx, q, job.ID, job.Status, job.CompletedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrJobAlreadyTerminal
	}
	return nil
}

// FailOrRetry burns one retry slot. At the retry limit the job goes to
// failed for good; otherwise it re-enters the pending set with its
// started_at cleared.
func (r *extractionQueueRepo) FailOrRetry(ctx context.Context, tx repository.Tx, job *model.ExtractionJob, jobErr error) error {
	job.RetryCount++
	job.ErrorMessage = jobErr.Error()

	if job.RetryCount >= job.MaxRetries {
		now := time.Now().UTC()
		job.Status = model.JobStatusFailed
		job.CompletedAt = &now
		const q = `UPDATE extraction_jobs SET status = $2, retry_count = $3, error_message = $4, completed_at = $5
WHERE id = $1 AND status = 'processing';`
		tag, err := execSQL(ctx, r.pool, tx, q, job.ID, job.Status, job.RetryCount, job.ErrorMessage, job.CompletedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrJobAlreadyTerminal
		}
		return nil
	}

	job.Status = model.JobStatusPending
	job.StartedAt = nil
	const q = `UPDATE extraction_jobs SET status = $2, retry_count = $3, error_message = $4, started_at = NULL
WHERE id = $1 AND status = 'processing';`
	tag, err := execSQL(ctx, r.pool, tx, q, job.ID, job.Status, job.RetryCount, job.ErrorMessage)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrJobAlreadyTerminal
	}
	return nil
}

// MarkFailed fails the job immediately without touching the retry
// budget (fatal errors).
func (r *extractionQueueRepo) MarkFailed(ctx context.Context, tx repository.Tx, job *model.ExtractionJob, jobErr error) error {
	now := time.Now().UTC()
	job.Status = model.JobStatusFailed
	job.ErrorMessage = jobErr.Error()
	job.CompletedAt = &now

	const q = `UPDATE extraction_jobs SET status = $2, error_message = $3, completed_at = $4
WHERE id = $1 AND status = 'processing';`
	tag, err := execSQL(ctx, r.pool, tx, q, job.ID, job.Status, job.ErrorMessage, job.CompletedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrJobAlreadyTerminal
	}
	return nil
}

func (r *extractionQueueRepo) SweepStale(ctx context.Context, olderThan time.Duration) (int, error) {
	const q = `
UPDATE extraction_jobs
SET status = 'failed', error_message = $2, completed_at = NOW()
WHERE status = 'processing' AND started_at < $1;`

	cutoff := time.Now().UTC().Add(-olderThan)
	tag, err := execSQL(ctx, r.pool, repository.NoTX, q, cutoff, domain.ErrStaleTimeout.Error())
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func scanExtractionJob(row pgx.Row) (*model.ExtractionJob, error) {
	var job model.ExtractionJob
	var status string
	err := row.Scan(
		&job.ID, &job.DocumentID, &job.Priority, &status, &job.ErrorMessage,
		&job.RetryCount, &job.MaxRetries, &job.CreatedAt, &job.StartedAt, &job.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	job.Status = model.JobStatus(status)
	return &job, nil
}
