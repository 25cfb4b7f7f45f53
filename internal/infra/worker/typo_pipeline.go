// File: internal/infra/worker/typo_pipeline.go

// Package worker holds the job pipelines the pollers drive: one unit
// of claimed work per tick, with per-job failure classification.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"paper-assistant/internal/domain"
	"paper-assistant/internal/domain/model"
	"paper-assistant/internal/domain/ports/adapter"
	"paper-assistant/internal/domain/ports/repository"
	"paper-assistant/internal/infra/metrics"
	"paper-assistant/internal/infra/sched"
	"paper-assistant/internal/textproc"
)

var _ sched.Pipeline = (*TypoCheckPipeline)(nil)

const typoQueueName = "typo_check"

// providerRegistry is what the pipeline needs from the corrector
// registry.
type providerRegistry interface {
	Resolve(preferred string) (adapter.Corrector, error)
}

// resultCache is what the pipeline needs from the redis result cache.
type resultCache interface {
	Put(ctx context.Context, res *model.TypoCheckResult)
}

// TypoCheckPipeline claims one typo check job at a time, splits the
// text into provider-sized chunks, runs the resolved corrector over
// each chunk and stores the aggregated result.
type TypoCheckPipeline struct {
	queue    repository.TypoCheckQueueRepository
	results  repository.TypoResultRepository
	cache    resultCache
	registry providerRegistry

	chunkSize       int
	truncationRatio float64
	staleAfter      time.Duration
	log             *zerolog.Logger
}

func NewTypoCheckPipeline(
	queue repository.TypoCheckQueueRepository,
	results repository.TypoResultRepository,
	cache resultCache,
	registry providerRegistry,
	chunkSize int,
	truncationRatio float64,
	staleAfter time.Duration,
	logger *zerolog.Logger,
) *TypoCheckPipeline {
	if chunkSize <= 0 {
		chunkSize = textproc.DefaultChunkSize
	}
	if truncationRatio <= 0 || truncationRatio >= 1 {
		truncationRatio = textproc.DefaultTruncationRatio
	}
	if staleAfter <= 0 {
		staleAfter = time.Hour
	}
	plog := logger.With().Str("component", "TypoCheckPipeline").Logger()
	return &TypoCheckPipeline{
		queue:           queue,
		results:         results,
		cache:           cache,
		registry:        registry,
		chunkSize:       chunkSize,
		truncationRatio: truncationRatio,
		staleAfter:      staleAfter,
		log:             &plog,
	}
}

func (p *TypoCheckPipeline) Name() string { return typoQueueName }

func (p *TypoCheckPipeline) SweepStale(ctx context.Context) (int, error) {
	n, err := p.queue.SweepStale(ctx, p.staleAfter)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.AddStaleJobs(typoQueueName, n)
	}
	return n, nil
}

// ProcessOne claims and fully processes one job. The bool reports
// whether a job was found; per-job failures are written onto the job
// and never returned as errors.
func (p *TypoCheckPipeline) ProcessOne(ctx context.Context) (bool, error) {
	job, err := p.queue.ClaimNextPending(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	log := p.log.With().Str("job_id", job.ID).Str("user_id", job.UserID).Logger()
	log.Info().Int("text_len", len(job.OriginalText)).Str("provider", job.Provider).Msg("processing typo check job")

	if err := p.process(ctx, job, &log); err != nil {
		p.recordFailure(ctx, job, err, &log)
	}
	return true, nil
}

func (p *TypoCheckPipeline) process(ctx context.Context, job *model.TypoCheckJob, log *zerolog.Logger) error {
	corrector, err := p.registry.Resolve(job.Provider)
	if err != nil {
		return err
	}

	chunks := textproc.Chunk(job.OriginalText, p.chunkSize)
	job.Progress = model.Progress{CurrentChunk: 0, TotalChunks: len(chunks)}
	if err := p.queue.UpdateProgress(ctx, repository.NoTX, job.ID, job.Progress); err != nil {
		log.Warn().Err(err).Msg("could not record initial progress")
	}

	chunkResults := make([]*adapter.CorrectionResult, 0, len(chunks))
	for i, chunk := range chunks {
		if cancelled, err := p.cancelled(ctx, job.ID); err != nil {
			return err
		} else if cancelled {
			log.Info().Int("chunks_done", i).Msg("job cancelled mid-flight, abandoning")
			return nil
		}

		res, err := corrector.CheckText(ctx, chunk)
		if err != nil {
			return err
		}
		chunkResults = append(chunkResults, res)

		job.Progress.CurrentChunk = i + 1
		if err := p.queue.UpdateProgress(ctx, repository.NoTX, job.ID, job.Progress); err != nil {
			log.Warn().Err(err).Int("chunk", i+1).Msg("could not record progress")
		}
	}

	corrected, issues := textproc.Aggregate(chunks, chunkResults)
	if textproc.Truncated(job.OriginalText, corrected, p.truncationRatio) {
		log.Warn().Int("original_len", len(job.OriginalText)).Int("corrected_len", len(corrected)).
			Msg("provider answer looks truncated, reconstructing from issues")
		corrected = textproc.Reconstruct(job.OriginalText, issues)
	}

	result := &model.TypoCheckResult{
		UserID:        job.UserID,
		TextHash:      job.TextHash,
		OriginalText:  job.OriginalText,
		CorrectedText: corrected,
		Issues:        issues,
		Provider:      corrector.Name(),
	}
	if err := p.results.Save(ctx, repository.NoTX, result); err != nil {
		return err
	}
	if err := p.queue.MarkCompleted(ctx, repository.NoTX, job, result.ID); err != nil {
		if errors.Is(err, domain.ErrJobAlreadyTerminal) {
			// cancelled or swept while the last chunk was in flight
			log.Info().Msg("job reached a terminal state mid-flight, dropping the result")
			return nil
		}
		return err
	}
	p.cache.Put(ctx, result)

	metrics.IncJobProcessed(typoQueueName, string(model.JobStatusCompleted))
	log.Info().Str("result_id", result.ID).Int("issues", len(issues)).Msg("typo check job completed")
	return nil
}

// cancelled re-reads the job between chunks so a mid-flight Cancel is
// honored without killing the in-progress provider call.
func (p *TypoCheckPipeline) cancelled(ctx context.Context, jobID string) (bool, error) {
	current, err := p.queue.FindByID(ctx, repository.NoTX, jobID)
	if err != nil {
		return false, err
	}
	return current.Status == model.JobStatusCancelled, nil
}

func (p *TypoCheckPipeline) recordFailure(ctx context.Context, job *model.TypoCheckJob, jobErr error, log *zerolog.Logger) {
	switch domain.Classify(jobErr) {
	case domain.KindFatal, domain.KindValidation:
		if err := p.queue.MarkFailed(ctx, repository.NoTX, job, jobErr); err != nil {
			if errors.Is(err, domain.ErrJobAlreadyTerminal) {
				log.Info().Err(jobErr).Msg("job reached a terminal state mid-flight, dropping the failure")
				return
			}
			log.Error().Err(err).Msg("could not mark job failed")
			return
		}
		metrics.IncJobProcessed(typoQueueName, string(model.JobStatusFailed))
		log.Error().Err(jobErr).Msg("typo check job failed for good")
	default:
		if err := p.queue.FailOrRetry(ctx, repository.NoTX, job, jobErr); err != nil {
			if errors.Is(err, domain.ErrJobAlreadyTerminal) {
				log.Info().Err(jobErr).Msg("job reached a terminal state mid-flight, dropping the failure")
				return
			}
			log.Error().Err(err).Msg("could not record job failure")
			return
		}
		if job.Status == model.JobStatusFailed {
			metrics.IncJobProcessed(typoQueueName, string(model.JobStatusFailed))
			log.Error().Err(jobErr).Int("retries", job.RetryCount).Msg("typo check job exhausted retries")
			return
		}
		metrics.IncJobRetry(typoQueueName)
		log.Warn().Err(jobErr).Int("retries", job.RetryCount).Msg("typo check job re-queued")
	}
}
