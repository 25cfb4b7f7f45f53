//go:build !integration

package worker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"paper-assistant/internal/domain"
	"paper-assistant/internal/domain/model"
	"paper-assistant/internal/domain/ports/adapter"
	"paper-assistant/internal/domain/ports/repository"
)

// --- typo check queue ---

type mockTypoQueue struct {
	mu      sync.Mutex
	jobs    map[string]*model.TypoCheckJob
	pending []string
	swept   int
}

func newMockTypoQueue() *mockTypoQueue {
	return &mockTypoQueue{jobs: make(map[string]*model.TypoCheckJob)}
}

func (m *mockTypoQueue) add(job *model.TypoCheckJob) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = job
	m.pending = append(m.pending, job.ID)
}

func (m *mockTypoQueue) Enqueue(_ context.Context, _ repository.Tx, job *model.TypoCheckJob) error {
	m.add(job)
	return nil
}

func (m *mockTypoQueue) FindByID(_ context.Context, _ repository.Tx, id string) (*model.TypoCheckJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (m *mockTypoQueue) ClaimNextPending(_ context.Context) (*model.TypoCheckJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.pending) > 0 {
		id := m.pending[0]
		m.pending = m.pending[1:]
		job := m.jobs[id]
		if job == nil || job.Status != model.JobStatusPending {
			continue
		}
		now := time.Now().UTC()
		job.Status = model.JobStatusProcessing
		job.StartedAt = &now
		cp := *job
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockTypoQueue) UpdateProgress(_ context.Context, _ repository.Tx, jobID string, p model.Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[jobID]; ok {
		job.Progress = p
	}
	return nil
}

func (m *mockTypoQueue) MarkCompleted(_ context.Context, _ repository.Tx, job *model.TypoCheckJob, resultID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.jobs[job.ID]
	if !ok || stored.Status != model.JobStatusProcessing {
		return domain.ErrJobAlreadyTerminal
	}
	now := time.Now().UTC()
	job.Status = model.JobStatusCompleted
	job.CompletedAt = &now
	job.ResultID = resultID
	*stored = *job
	return nil
}

func (m *mockTypoQueue) FailOrRetry(_ context.Context, _ repository.Tx, job *model.TypoCheckJob, jobErr error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.jobs[job.ID]
	if !ok || stored.Status != model.JobStatusProcessing {
		return domain.ErrJobAlreadyTerminal
	}
	job.RetryCount++
	job.ErrorMessage = jobErr.Error()
	if job.RetryCount >= job.MaxRetries {
		now := time.Now().UTC()
		job.Status = model.JobStatusFailed
		job.CompletedAt = &now
	} else {
		job.Status = model.JobStatusPending
		job.StartedAt = nil
	}
	*stored = *job
	if job.Status == model.JobStatusPending {
		m.pending = append(m.pending, job.ID)
	}
	return nil
}

func (m *mockTypoQueue) MarkFailed(_ context.Context, _ repository.Tx, job *model.TypoCheckJob, jobErr error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.jobs[job.ID]
	if !ok || stored.Status != model.JobStatusProcessing {
		return domain.ErrJobAlreadyTerminal
	}
	now := time.Now().UTC()
	job.Status = model.JobStatusFailed
	job.ErrorMessage = jobErr.Error()
	job.CompletedAt = &now
	*stored = *job
	return nil
}

func (m *mockTypoQueue) Cancel(_ context.Context, _ repository.Tx, jobID, userID string) error {
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

func (m *mockTypoQueue) SweepStale(_ context.Context, olderThan time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().UTC().Add(-olderThan)
	n := 0
	for _, job := range m.jobs {
		if job.Status == model.JobStatusProcessing && job.StartedAt != nil && job.StartedAt.Before(cutoff) {
			now := time.Now().UTC()
			job.Status = model.JobStatusFailed
			job.ErrorMessage = domain.ErrStaleTimeout.Error()
			job.CompletedAt = &now
			n++
		}
	}
	m.swept += n
	return n, nil
}

var _ repository.TypoCheckQueueRepository = (*mockTypoQueue)(nil)

// --- typo result repo ---

type mockResultRepo struct {
	mu    sync.Mutex
	saved []*model.TypoCheckResult
}

func (m *mockResultRepo) Save(_ context.Context, _ repository.Tx, result *model.TypoCheckResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	result.CreatedAt = time.Now().UTC()
	m.saved = append(m.saved, result)
	return nil
}

func (m *mockResultRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.TypoCheckResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.saved {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockResultRepo) FindByUserAndHash(_ context.Context, _ repository.Tx, userID, textHash string) (*model.TypoCheckResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.saved) - 1; i >= 0; i-- {
		if m.saved[i].UserID == userID && m.saved[i].TextHash == textHash {
			return m.saved[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

var _ repository.TypoResultRepository = (*mockResultRepo)(nil)

// --- result cache ---

type mockCache struct {
	mu   sync.Mutex
	puts []*model.TypoCheckResult
}

func (m *mockCache) Put(_ context.Context, res *model.TypoCheckResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts = append(m.puts, res)
}

// --- corrector / registry ---

type mockCorrector struct {
	mu    sync.Mutex
	name  string
	calls int
	check func(text string, call int) (*adapter.CorrectionResult, error)
}

func (m *mockCorrector) Name() string    { return m.name }
func (m *mockCorrector) Available() bool { return true }

func (m *mockCorrector) CheckText(_ context.Context, text string) (*adapter.CorrectionResult, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.mu.Unlock()
	if m.check != nil {
		return m.check(text, call)
	}
	return &adapter.CorrectionResult{CorrectedText: text}, nil
}

type mockRegistry struct {
	corrector adapter.Corrector
	err       error
}

func (m *mockRegistry) Resolve(string) (adapter.Corrector, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.corrector, nil
}

// --- extraction queue ---

type mockExtractionQueue struct {
	mu      sync.Mutex
	jobs    map[string]*model.ExtractionJob
	pending []string
}

func newMockExtractionQueue() *mockExtractionQueue {
	return &mockExtractionQueue{jobs: make(map[string]*model.ExtractionJob)}
}

func (m *mockExtractionQueue) add(job *model.ExtractionJob) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = job
	m.pending = append(m.pending, job.ID)
}

func (m *mockExtractionQueue) Enqueue(_ context.Context, _ repository.Tx, job *model.ExtractionJob) error {
	m.add(job)
	return nil
}

func (m *mockExtractionQueue) FindByID(_ context.Context, _ repository.Tx, id string) (*model.ExtractionJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (m *mockExtractionQueue) NextPending(_ context.Context) (*model.ExtractionJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return nil, domain.ErrNotFound
	}
	cp := *m.jobs[m.pending[0]]
	return &cp, nil
}

func (m *mockExtractionQueue) ClaimNextPending(_ context.Context) (*model.ExtractionJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.pending) > 0 {
		id := m.pending[0]
		m.pending = m.pending[1:]
		job := m.jobs[id]
		if job == nil || job.Status != model.JobStatusPending {
			continue
		}
		now := time.Now().UTC()
		job.Status = model.JobStatusProcessing
		job.StartedAt = &now
		cp := *job
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockExtractionQueue) MarkCompleted(_ context.Context, _ repository.Tx, job *model.ExtractionJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.jobs[job.ID]
	if !ok || stored.Status != model.JobStatusProcessing {
		return domain.ErrJobAlreadyTerminal
	}
	now := time.Now().UTC()
	job.Status = model.JobStatusCompleted
	job.CompletedAt = &now
	*stored = *job
	return nil
}

func (m *mockExtractionQueue) FailOrRetry(_ context.Context, _ repository.Tx, job *model.ExtractionJob, jobErr error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.jobs[job.ID]
	if !ok || stored.Status != model.JobStatusProcessing {
		return domain.ErrJobAlreadyTerminal
	}
	job.RetryCount++
	job.ErrorMessage = jobErr.Error()
	if job.RetryCount >= job.MaxRetries {
		now := time.Now().UTC()
		job.Status = model.JobStatusFailed
		job.CompletedAt = &now
	} else {
		job.Status = model.JobStatusPending
		job.StartedAt = nil
	}
	*stored = *job
	if job.Status == model.JobStatusPending {
		m.pending = append(m.pending, job.ID)
	}
	return nil
}

func (m *mockExtractionQueue) MarkFailed(_ context.Context, _ repository.Tx, job *model.ExtractionJob, jobErr error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.jobs[job.ID]
	if !ok || stored.Status != model.JobStatusProcessing {
		return domain.ErrJobAlreadyTerminal
	}
	now := time.Now().UTC()
	job.Status = model.JobStatusFailed
	job.ErrorMessage = jobErr.Error()
	job.CompletedAt = &now
	*stored = *job
	return nil
}

func (m *mockExtractionQueue) SweepStale(_ context.Context, olderThan time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().UTC().Add(-olderThan)
	n := 0
	for _, job := range m.jobs {
		if job.Status == model.JobStatusProcessing && job.StartedAt != nil && job.StartedAt.Before(cutoff) {
			now := time.Now().UTC()
			job.Status = model.JobStatusFailed
			job.ErrorMessage = domain.ErrStaleTimeout.Error()
			job.CompletedAt = &now
			n++
		}
	}
	return n, nil
}

var _ repository.ExtractionQueueRepository = (*mockExtractionQueue)(nil)

// --- page repo ---

type mockPageRepo struct {
	mu    sync.Mutex
	pages map[string][]*model.Page
}

func newMockPageRepo() *mockPageRepo {
	return &mockPageRepo{pages: make(map[string][]*model.Page)}
}

func (m *mockPageRepo) ReplaceForDocument(_ context.Context, _ repository.Tx, documentID string, pages []*model.Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[documentID] = pages
	return nil
}

func (m *mockPageRepo) CountForDocument(_ context.Context, _ repository.Tx, documentID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pages[documentID]), nil
}

var _ repository.PageRepository = (*mockPageRepo)(nil)

// --- extractor ---

type mockExtractor struct {
	mu    sync.Mutex
	pages []string
	err   error
	paths []string
}

func (m *mockExtractor) ExtractPages(_ context.Context, filePath string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths = append(m.paths, filePath)
	if m.err != nil {
		return nil, m.err
	}
	return m.pages, nil
}

var _ adapter.Extractor = (*mockExtractor)(nil)
