//go:build !integration

package web

import (
	"context"
	"sync"
	"time"

	"paper-assistant/internal/domain"
	"paper-assistant/internal/domain/model"
	"paper-assistant/internal/domain/ports/repository"
	"paper-assistant/internal/infra/adapters/ai"
)

// The handlers are tested through real use cases backed by these
// in-memory fakes.

type memTypoQueue struct {
	mu   sync.Mutex
	jobs map[string]*model.TypoCheckJob
}

func newMemTypoQueue() *memTypoQueue {
	return &memTypoQueue{jobs: make(map[string]*model.TypoCheckJob)}
}

func (m *memTypoQueue) Enqueue(_ context.Context, _ repository.Tx, job *model.TypoCheckJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	active := 0
	for _, j := range m.jobs {
		if j.UserID == job.UserID && !j.Terminal() {
			active++
		}
	}
	if active >= model.MaxActiveJobsPerUser {
		return domain.ErrTooManyPendingJobs
	}
	m.jobs[job.ID] = job
	return nil
}

func (m *memTypoQueue) FindByID(_ context.Context, _ repository.Tx, id string) (*model.TypoCheckJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[id]; ok {
		cp := *job
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memTypoQueue) ClaimNextPending(context.Context) (*model.TypoCheckJob, error) {
	return nil, domain.ErrNotFound
}

func (m *memTypoQueue) UpdateProgress(_ context.Context, _ repository.Tx, _ string, _ model.Progress) error {
	return nil
}

func (m *memTypoQueue) MarkCompleted(_ context.Context, _ repository.Tx, _ *model.TypoCheckJob, _ string) error {
	return nil
}

func (m *memTypoQueue) FailOrRetry(_ context.Context, _ repository.Tx, _ *model.TypoCheckJob, _ error) error {
	return nil
}

func (m *memTypoQueue) MarkFailed(_ context.Context, _ repository.Tx, _ *model.TypoCheckJob, _ error) error {
	return nil
}

func (m *memTypoQueue) Cancel(_ context.Context, _ repository.Tx, jobID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
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

func (m *memTypoQueue) SweepStale(context.Context, time.Duration) (int, error) { return 0, nil }

var _ repository.TypoCheckQueueRepository = (*memTypoQueue)(nil)

type memResultRepo struct {
	mu      sync.Mutex
	results map[string]*model.TypoCheckResult
}

func newMemResultRepo() *memResultRepo {
	return &memResultRepo{results: make(map[string]*model.TypoCheckResult)}
}

func (m *memResultRepo) Save(_ context.Context, _ repository.Tx, result *model.TypoCheckResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[result.ID] = result
	return nil
}

func (m *memResultRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.TypoCheckResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.results[id]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memResultRepo) FindByUserAndHash(_ context.Context, _ repository.Tx, userID, textHash string) (*model.TypoCheckResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.results {
		if r.UserID == userID && r.TextHash == textHash {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

var _ repository.TypoResultRepository = (*memResultRepo)(nil)

type memCache struct {
	mu      sync.Mutex
	entries map[string]*model.TypoCheckResult
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]*model.TypoCheckResult)}
}

func (m *memCache) Get(_ context.Context, userID, textHash string) *model.TypoCheckResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[userID+":"+textHash]
}

func (m *memCache) Put(_ context.Context, res *model.TypoCheckResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[res.UserID+":"+res.TextHash] = res
}

type noopWaker struct{}

func (noopWaker) WakeUp() {}

type memExtractionQueue struct {
	mu   sync.Mutex
	jobs map[string]*model.ExtractionJob
}

func newMemExtractionQueue() *memExtractionQueue {
	return &memExtractionQueue{jobs: make(map[string]*model.ExtractionJob)}
}

func (m *memExtractionQueue) Enqueue(_ context.Context, _ repository.Tx, job *model.ExtractionJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = job
	return nil
}

func (m *memExtractionQueue) FindByID(_ context.Context, _ repository.Tx, id string) (*model.ExtractionJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[id]; ok {
		cp := *job
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memExtractionQueue) NextPending(context.Context) (*model.ExtractionJob, error) {
	return nil, domain.ErrNotFound
}

func (m *memExtractionQueue) ClaimNextPending(context.Context) (*model.ExtractionJob, error) {
	return nil, domain.ErrNotFound
}

func (m *memExtractionQueue) MarkCompleted(_ context.Context, _ repository.Tx, _ *model.ExtractionJob) error {
	return nil
}

func (m *memExtractionQueue) FailOrRetry(_ context.Context, _ repository.Tx, _ *model.ExtractionJob, _ error) error {
	return nil
}

func (m *memExtractionQueue) MarkFailed(_ context.Context, _ repository.Tx, _ *model.ExtractionJob, _ error) error {
	return nil
}

func (m *memExtractionQueue) SweepStale(context.Context, time.Duration) (int, error) { return 0, nil }

var _ repository.ExtractionQueueRepository = (*memExtractionQueue)(nil)

type memPageRepo struct {
	counts map[string]int
}

func (m *memPageRepo) ReplaceForDocument(_ context.Context, _ repository.Tx, documentID string, pages []*model.Page) error {
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	m.counts[documentID] = len(pages)
	return nil
}

func (m *memPageRepo) CountForDocument(_ context.Context, _ repository.Tx, documentID string) (int, error) {
	return m.counts[documentID], nil
}

var _ repository.PageRepository = (*memPageRepo)(nil)

type staticProviders struct{ list []ai.ProviderStatus }

func (s staticProviders) Providers() []ai.ProviderStatus { return s.list }
