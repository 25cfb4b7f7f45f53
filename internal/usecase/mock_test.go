//go:build !integration

package usecase

import (
	"context"
	"sync"
	"time"

	"paper-assistant/internal/domain"
	"paper-assistant/internal/domain/model"
	"paper-assistant/internal/domain/ports/repository"
)

type fakeTypoQueue struct {
	mu         sync.Mutex
	jobs       map[string]*model.TypoCheckJob
	enqueueErr error
}

func newFakeTypoQueue() *fakeTypoQueue {
	return &fakeTypoQueue{jobs: make(map[string]*model.TypoCheckJob)}
}

func (f *fakeTypoQueue) activeFor(userID string) int {
	n := 0
	for _, j := range f.jobs {
		if j.UserID == userID && (j.Status == model.JobStatusPending || j.Status == model.JobStatusProcessing) {
			n++
		}
	}
	return n
}

func (f *fakeTypoQueue) Enqueue(_ context.Context, _ repository.Tx, job *model.TypoCheckJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	if f.activeFor(job.UserID) >= model.MaxActiveJobsPerUser {
		return domain.ErrTooManyPendingJobs
	}
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeTypoQueue) FindByID(_ context.Context, _ repository.Tx, id string) (*model.TypoCheckJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (f *fakeTypoQueue) ClaimNextPending(context.Context) (*model.TypoCheckJob, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeTypoQueue) UpdateProgress(_ context.Context, _ repository.Tx, jobID string, p model.Progress) error {
	return nil
}

func (f *fakeTypoQueue) MarkCompleted(_ context.Context, _ repository.Tx, job *model.TypoCheckJob, resultID string) error {
	return nil
}

func (f *fakeTypoQueue) FailOrRetry(_ context.Context, _ repository.Tx, job *model.TypoCheckJob, jobErr error) error {
	return nil
}

func (f *fakeTypoQueue) MarkFailed(_ context.Context, _ repository.Tx, job *model.TypoCheckJob, jobErr error) error {
	return nil
}

func (f *fakeTypoQueue) Cancel(_ context.Context, _ repository.Tx, jobID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok || job.UserID != userID {
		return domain.ErrNotFound
	}
	if job.Terminal() {
		return domain.ErrJobAlreadyTerminal
	}
	now := time.Now().UTC()
	job.Status = model.JobStatusCancelled
	job.CompletedAt = &now
	return nil
}

func (f *fakeTypoQueue) SweepStale(context.Context, time.Duration) (int, error) { return 0, nil }

var _ repository.TypoCheckQueueRepository = (*fakeTypoQueue)(nil)

type fakeResultRepo struct {
	mu      sync.Mutex
	results map[string]*model.TypoCheckResult
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{results: make(map[string]*model.TypoCheckResult)}
}

func (f *fakeResultRepo) Save(_ context.Context, _ repository.Tx, result *model.TypoCheckResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[result.ID] = result
	return nil
}

func (f *fakeResultRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.TypoCheckResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.results[id]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeResultRepo) FindByUserAndHash(_ context.Context, _ repository.Tx, userID, textHash string) (*model.TypoCheckResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.results {
		if r.UserID == userID && r.TextHash == textHash {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

var _ repository.TypoResultRepository = (*fakeResultRepo)(nil)

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]*model.TypoCheckResult
	puts    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*model.TypoCheckResult)}
}

func (f *fakeCache) Get(_ context.Context, userID, textHash string) *model.TypoCheckResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[userID+":"+textHash]
}

func (f *fakeCache) Put(_ context.Context, res *model.TypoCheckResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[res.UserID+":"+res.TextHash] = res
	f.puts++
}

type fakeWaker struct {
	mu    sync.Mutex
	wakes int
}

func (f *fakeWaker) WakeUp() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wakes++
}

func (f *fakeWaker) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wakes
}

type fakeExtractionQueue struct {
	mu   sync.Mutex
	jobs map[string]*model.ExtractionJob
}

func newFakeExtractionQueue() *fakeExtractionQueue {
	return &fakeExtractionQueue{jobs: make(map[string]*model.ExtractionJob)}
}

func (f *fakeExtractionQueue) Enqueue(_ context.Context, _ repository.Tx, job *model.ExtractionJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeExtractionQueue) FindByID(_ context.Context, _ repository.Tx, id string) (*model.ExtractionJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (f *fakeExtractionQueue) NextPending(context.Context) (*model.ExtractionJob, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeExtractionQueue) ClaimNextPending(context.Context) (*model.ExtractionJob, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeExtractionQueue) MarkCompleted(_ context.Context, _ repository.Tx, job *model.ExtractionJob) error {
	return nil
}

func (f *fakeExtractionQueue) FailOrRetry(_ context.Context, _ repository.Tx, job *model.ExtractionJob, jobErr error) error {
	return nil
}

func (f *fakeExtractionQueue) MarkFailed(_ context.Context, _ repository.Tx, job *model.ExtractionJob, jobErr error) error {
	return nil
}

func (f *fakeExtractionQueue) SweepStale(context.Context, time.Duration) (int, error) { return 0, nil }

var _ repository.ExtractionQueueRepository = (*fakeExtractionQueue)(nil)

type fakePageRepo struct {
	counts map[string]int
}

func (f *fakePageRepo) ReplaceForDocument(_ context.Context, _ repository.Tx, documentID string, pages []*model.Page) error {
	if f.counts == nil {
		f.counts = make(map[string]int)
	}
	f.counts[documentID] = len(pages)
	return nil
}

func (f *fakePageRepo) CountForDocument(_ context.Context, _ repository.Tx, documentID string) (int, error) {
	return f.counts[documentID], nil
}

var _ repository.PageRepository = (*fakePageRepo)(nil)
