// File: internal/infra/worker/extraction_pipeline.go
package worker

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"paper-assistant/internal/domain"
	"paper-assistant/internal/domain/model"
	"paper-assistant/internal/domain/ports/adapter"
	"paper-assistant/internal/domain/ports/repository"
	"paper-assistant/internal/infra/metrics"
	"paper-assistant/internal/infra/sched"
	"paper-assistant/internal/textproc"
)

var _ sched.Pipeline = (*ExtractionPipeline)(nil)

const extractionQueueName = "extraction"

// ExtractionPipeline claims one extraction job at a time, pulls the
// per-page text out of the stored document and replaces the document's
// pages with the fresh extraction.
type ExtractionPipeline struct {
	queue     repository.ExtractionQueueRepository
	pages     repository.PageRepository
	extractor adapter.Extractor

	storageDir string
	staleAfter time.Duration
	log        *zerolog.Logger
}

func NewExtractionPipeline(
	queue repository.ExtractionQueueRepository,
	pages repository.PageRepository,
	extractor adapter.Extractor,
	storageDir string,
	staleAfter time.Duration,
	logger *zerolog.Logger,
) *ExtractionPipeline {
	if staleAfter <= 0 {
		staleAfter = time.Hour
	}
	plog := logger.With().Str("component", "ExtractionPipeline").Logger()
	return &ExtractionPipeline{
		queue:      queue,
		pages:      pages,
		extractor:  extractor,
		storageDir: storageDir,
		staleAfter: staleAfter,
		log:        &plog,
	}
}

func (p *ExtractionPipeline) Name() string { return extractionQueueName }

func (p *ExtractionPipeline) SweepStale(ctx context.Context) (int, error) {
	n, err := p.queue.SweepStale(ctx, p.staleAfter)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.AddStaleJobs(extractionQueueName, n)
	}
	return n, nil
}

func (p *ExtractionPipeline) ProcessOne(ctx context.Context) (bool, error) {
	job, err := p.queue.ClaimNextPending(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	log := p.log.With().Str("job_id", job.ID).Str("document_id", job.DocumentID).Logger()
	log.Info().Int("priority", job.Priority).Msg("processing extraction job")

	if err := p.process(ctx, job, &log); err != nil {
		p.recordFailure(ctx, job, err, &log)
	}
	return true, nil
}

func (p *ExtractionPipeline) process(ctx context.Context, job *model.ExtractionJob, log *zerolog.Logger) error {
	pageTexts, err := p.extractor.ExtractPages(ctx, p.documentPath(job.DocumentID))
	if err != nil {
		return err
	}

	pages := make([]*model.Page, 0, len(pageTexts))
	for i, content := range pageTexts {
		pages = append(pages, &model.Page{
			ID:                uuid.NewString(),
			DocumentID:        job.DocumentID,
			PageNumber:        i + 1,
			Content:           content,
			ContentNormalized: textproc.NormalizePage(content),
		})
	}
	if err := p.pages.ReplaceForDocument(ctx, repository.NoTX, job.DocumentID, pages); err != nil {
		return err
	}
	if err := p.queue.MarkCompleted(ctx, repository.NoTX, job); err != nil {
		if errors.Is(err, domain.ErrJobAlreadyTerminal) {
			// swept to failed while extraction was still running
			log.Info().Msg("job reached a terminal state mid-flight, keeping it there")
			return nil
		}
		return err
	}

	metrics.IncJobProcessed(extractionQueueName, string(model.JobStatusCompleted))
	log.Info().Int("pages", len(pages)).Msg("extraction job completed")
	return nil
}

func (p *ExtractionPipeline) documentPath(documentID string) string {
	return filepath.Join(p.storageDir, documentID+".pdf")
}

func (p *ExtractionPipeline) recordFailure(ctx context.Context, job *model.ExtractionJob, jobErr error, log *zerolog.Logger) {
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
		metrics.IncJobProcessed(extractionQueueName, string(model.JobStatusFailed))
		log.Error().Err(jobErr).Msg("extraction job failed for good")
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
			metrics.IncJobProcessed(extractionQueueName, string(model.JobStatusFailed))
			log.Error().Err(jobErr).Int("retries", job.RetryCount).Msg("extraction job exhausted retries")
			return
		}
		metrics.IncJobRetry(extractionQueueName)
		log.Warn().Err(jobErr).Int("retries", job.RetryCount).Msg("extraction job re-queued")
	}
}
