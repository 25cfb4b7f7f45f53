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

var _ repository.TypoCheckQueueRepository = (*typoCheckQueueRepo)(nil)

type typoCheckQueueRepo struct {
	pool *pgxpool.Pool
	tm   repository.TransactionManager
}

func NewTypoCheckQueueRepo(pool *pgxpool.Pool, tm repository.TransactionManager) *typoCheckQueueRepo {
	return &typoCheckQueueRepo{pool: pool, tm: tm}
}

const typoJobColumns = `
id, user_id, original_text, text_hash, provider, status, progress_current, progress_total,
error_message, result_id, retry_count, max_retries, created_at, started_at, completed_at`

// Enqueue inserts the job only while the user stays under the
// active-job cap. The count-and-insert runs under a per-user advisory
// lock: under READ COMMITTED two concurrent guarded inserts could each
// see the same count, so submits for one user are serialized.
func (r *typoCheckQueueRepo) Enqueue(ctx context.Context, tx repository.Tx, job *model.TypoCheckJob) error {
	if tx != nil {
		return r.enqueueLocked(ctx, tx, job)
	}
	return r.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		return r.enqueueLocked(ctx, tx, job)
	})
}

func (r *typoCheckQueueRepo) enqueueLocked(ctx context.Context, tx repository.Tx, job *model.TypoCheckJob) error {
	// xact lock, released automatically at commit or rollback
	const lock = `SELECT pg_advisory_xact_lock(hashtext($1));`
	if _, err := execSQL(ctx, r.pool, tx, lock, job.UserID); err != nil {
		return err
	}

	const q = `
INSERT INTO typo_check_jobs
  (id, user_id, original_text, text_hash, provider, status, progress_current, progress_total,
   error_message, retry_count, max_retries, created_at)
SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
WHERE (
  SELECT COUNT(*) FROM typo_check_jobs
  WHERE user_id = $2 AND status IN ('pending', 'processing')
) < $13;`

	tag, err := execSQL(ctx, r.pool, tx, q,
		job.ID, job.UserID, job.OriginalText, job.TextHash, job.Provider, job.Status,
		job.Progress.CurrentChunk, job.Progress.TotalChunks, job.ErrorMessage,
		job.RetryCount, job.MaxRetries, job.CreatedAt, model.MaxActiveJobsPerUser)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTooManyPendingJobs
	}
	return nil
}

func (r *typoCheckQueueRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.TypoCheckJob, error) {
	const q = `SELECT ` + typoJobColumns + ` FROM typo_check_jobs WHERE id = $1;`
	row, err := queryRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanTypoJob(row)
}

// ClaimNextPending atomically fetches the oldest eligible pending job
// and marks it processing. Cancelled jobs never match the filter, so a
// job cancelled while pending is skipped for free.
func (r *typoCheckQueueRepo) ClaimNextPending(ctx context.Context) (*model.TypoCheckJob, error) {
	var job *model.TypoCheckJob

	err := r.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		const fetch = `
SELECT ` + typoJobColumns + `
FROM typo_check_jobs
WHERE status = 'pending'
ORDER BY created_at ASC
LIMIT 1
FOR UPDATE SKIP LOCKED;`

		row, err := queryRow(ctx, r.pool, tx, fetch)
		if err != nil {
			return err
		}
		fetched, err := scanTypoJob(row)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		fetched.Status = model.JobStatusProcessing
		fetched.StartedAt = &now

		const claim = `UPDATE typo_check_jobs SET status = $2, started_at = $3 WHERE id = $1;`
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

func (r *typoCheckQueueRepo) UpdateProgress(ctx context.Context, tx repository.Tx, jobID string, p model.Progress) error {
	const q = `UPDATE typo_check_jobs SET progress_current = $2, progress_total = $3 WHERE id = $1;`
	_, err := execSQL(ctx, r.pool, tx, q, jobID, p.CurrentChunk, p.TotalChunks)
	return err
}

// MarkCompleted finalizes a claimed job. The status guard keeps a job
// that was cancelled or swept while the worker held it from being
// resurrected; the late result is simply dropped.
func (r *typoCheckQueueRepo) MarkCompleted(ctx context.Context, tx repository.Tx, job *model.TypoCheckJob, resultID string) error {
	now := time.Now().UTC()
	job.Status = model.JobStatusCompleted
	job.CompletedAt = &now
	job.ResultID = resultID

	const q = `UPDATE typo_check_jobs SET status = $2, completed_at = $3, result_id = $4, error_message = ''
WHERE id = $1 AND status = 'processing';`
	tag, err := execSQL(ctx, r.pool, tx, q, job.ID, job.Status, job.CompletedAt, job.ResultID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrJobAlreadyTerminal
	}
	return nil
}

func (r *typoCheckQueueRepo) FailOrRetry(ctx context.Context, tx repository.Tx, job *model.TypoCheckJob, jobErr error) error {
	job.RetryCount++
	job.ErrorMessage = jobErr.Error()

	if job.RetryCount >= job.MaxRetries {
		now := time.Now().UTC()
		job.Status = model.JobStatusFailed
		job.CompletedAt = &now
		const q = `UPDATE typo_check_jobs SET status = $2, retry_count = $3, error_message = $4, completed_at = $5
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
	const q = `UPDATE typo_check_jobs SET status = $2, retry_count = $3, error_message = $4, started_at = NULL
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

func (r *typoCheckQueueRepo) MarkFailed(ctx context.Context, tx repository.Tx, job *model.TypoCheckJob, jobErr error) error {
	now := time.Now().UTC()
	job.Status = model.JobStatusFailed
	job.ErrorMessage = jobErr.Error()
	job.CompletedAt = &now

	const q = `UPDATE typo_check_jobs SET status = $2, error_message = $3, completed_at = $4
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

// Cancel flips a pending or processing job to cancelled. Terminal jobs
// are left untouched.
func (r *typoCheckQueueRepo) Cancel(ctx context.Context, tx repository.Tx, jobID, userID string) error {
	const q = `
UPDATE typo_check_jobs
SET status = 'cancelled', completed_at = NOW()
WHERE id = $1 AND user_id = $2 AND status IN ('pending', 'processing');`

	tag, err := execSQL(ctx, r.pool, tx, q, jobID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.FindByID(ctx, tx, jobID); err != nil {
			return err
		}
		return domain.ErrJobAlreadyTerminal
	}
	return nil
}

func (r *typoCheckQueueRepo) SweepStale(ctx context.Context, olderThan time.Duration) (int, error) {
	const q = `
UPDATE typo_check_jobs
SET status = 'failed', error_message = $2, completed_at = NOW()
WHERE status = 'processing' AND started_at < $1;`

	cutoff := time.Now().UTC().Add(-olderThan)
	tag, err := execSQL(ctx, r.pool, repository.NoTX, q, cutoff, domain.ErrStaleTimeout.Error())
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func scanTypoJob(row pgx.Row) (*model.TypoCheckJob, error) {
	var job model.TypoCheckJob
	var status string
	var resultID *string
	err := row.Scan(
		&job.ID, &job.UserID, &job.OriginalText, &job.TextHash, &job.Provider, &status,
		&job.Progress.CurrentChunk, &job.Progress.TotalChunks, &job.ErrorMessage,
		&resultID, &job.RetryCount, &job.MaxRetries, &job.CreatedAt, &job.StartedAt, &job.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	job.Status = model.JobStatus(status)
	if resultID != nil {
		job.ResultID = *resultID
	}
	return &job, nil
}
