// Package usecase wires the domain operations producers call: submit,
// poll, cancel, fetch result. Pipelines own everything after enqueue.
package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"paper-assistant/internal/domain"
	"paper-assistant/internal/domain/model"
	"paper-assistant/internal/domain/ports/repository"
)

// waker resumes an idle poller after a successful enqueue.
type waker interface {
	WakeUp()
}

// typoResultCache is the read/write slice of the redis cache the
// submit path needs.
type typoResultCache interface {
	Get(ctx context.Context, userID, textHash string) *model.TypoCheckResult
	Put(ctx context.Context, res *model.TypoCheckResult)
}

// SubmitOutcome is what a typo check submission produced: either a
// queued job or a previously computed result for the identical text.
type SubmitOutcome struct {
	Job    *model.TypoCheckJob
	Cached *model.TypoCheckResult
}

// TypoCheckUseCase drives the typo check queue from the producer side.
type TypoCheckUseCase struct {
	queue   repository.TypoCheckQueueRepository
	results repository.TypoResultRepository
	cache   typoResultCache
	waker   waker
	log     *zerolog.Logger
}

func NewTypoCheckUseCase(
	queue repository.TypoCheckQueueRepository,
	results repository.TypoResultRepository,
	cache typoResultCache,
	w waker,
	logger *zerolog.Logger,
) *TypoCheckUseCase {
	l := logger.With().Str("component", "TypoCheckUseCase").Logger()
	return &TypoCheckUseCase{queue: queue, results: results, cache: cache, waker: w, log: &l}
}

// Submit validates the text, short-circuits on a cached result for the
// identical submission and otherwise enqueues a new job. Validation
// failures (empty text, oversized text, per-user cap) surface
// synchronously and never enter the queue.
func (uc *TypoCheckUseCase) Submit(ctx context.Context, userID, text, provider string) (*SubmitOutcome, error) {
	job, err := model.NewTypoCheckJob(userID, text, provider)
	if err != nil {
		return nil, err
	}

	if cached := uc.cache.Get(ctx, userID, job.TextHash); cached != nil {
		uc.log.Debug().Str("user_id", userID).Msg("typo check served from cache")
		return &SubmitOutcome{Cached: cached}, nil
	}
	// redis may have expired; the durable copy still counts as a hit
	if res, err := uc.results.FindByUserAndHash(ctx, repository.NoTX, userID, job.TextHash); err == nil {
		uc.cache.Put(ctx, res)
		return &SubmitOutcome{Cached: res}, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if err := uc.queue.Enqueue(ctx, repository.NoTX, job); err != nil {
		return nil, err
	}
	uc.waker.WakeUp()

	uc.log.Info().Str("job_id", job.ID).Str("user_id", userID).Int("text_len", len(text)).Msg("typo check job enqueued")
	return &SubmitOutcome{Job: job}, nil
}

// Status returns the polling view of a job. Only the owner sees it.
func (uc *TypoCheckUseCase) Status(ctx context.Context, userID, jobID string) (*model.PollStatus, error) {
	job, err := uc.queue.FindByID(ctx, repository.NoTX, jobID)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, domain.ErrNotFound
	}
	view := job.PollView()
	return &view, nil
}

// Cancel stops a pending or processing job. Cancelling a terminal job
// returns domain.ErrJobAlreadyTerminal.
func (uc *TypoCheckUseCase) Cancel(ctx context.Context, userID, jobID string) error {
	if err := uc.queue.Cancel(ctx, repository.NoTX, jobID, userID); err != nil {
		return err
	}
	uc.log.Info().Str("job_id", jobID).Str("user_id", userID).Msg("typo check job cancelled")
	return nil
}

// Result fetches a stored correction. Only the owner sees it.
func (uc *TypoCheckUseCase) Result(ctx context.Context, userID, resultID string) (*model.TypoCheckResult, error) {
	res, err := uc.results.FindByID(ctx, repository.NoTX, resultID)
	if err != nil {
		return nil, err
	}
	if res.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return res, nil
}
