package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"paper-assistant/internal/domain/model"
	"paper-assistant/internal/domain/ports/repository"
)

// ExtractionUseCase drives the extraction queue from the producer side.
type ExtractionUseCase struct {
	queue repository.ExtractionQueueRepository
	pages repository.PageRepository
	waker waker
	log   *zerolog.Logger
}

func NewExtractionUseCase(
	queue repository.ExtractionQueueRepository,
	pages repository.PageRepository,
	w waker,
	logger *zerolog.Logger,
) *ExtractionUseCase {
	l := logger.With().Str("component", "ExtractionUseCase").Logger()
	return &ExtractionUseCase{queue: queue, pages: pages, waker: w, log: &l}
}

// Enqueue queues a document for extraction. Higher priority runs
// first; equal priorities are FIFO.
func (uc *ExtractionUseCase) Enqueue(ctx context.Context, documentID string, priority int) (*model.ExtractionJob, error) {
	job, err := model.NewExtractionJob(documentID, priority)
	if err != nil {
		return nil, err
	}
	if err := uc.queue.Enqueue(ctx, repository.NoTX, job); err != nil {
		return nil, err
	}
	uc.waker.WakeUp()

	uc.log.Info().Str("job_id", job.ID).Str("document_id", documentID).Int("priority", priority).Msg("extraction job enqueued")
	return job, nil
}

// Status returns the polling view of an extraction job.
func (uc *ExtractionUseCase) Status(ctx context.Context, jobID string) (*model.PollStatus, error) {
	job, err := uc.queue.FindByID(ctx, repository.NoTX, jobID)
	if err != nil {
		return nil, err
	}
	view := job.PollView()
	return &view, nil
}

// PageCount reports how many pages have been extracted for a document.
func (uc *ExtractionUseCase) PageCount(ctx context.Context, documentID string) (int, error) {
	return uc.pages.CountForDocument(ctx, repository.NoTX, documentID)
}
