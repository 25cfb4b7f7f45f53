package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"paper-assistant/internal/domain"

	"github.com/google/uuid"
)

// MaxTextLength is the largest input a typo check job accepts (100K chars).
const MaxTextLength = 100_000

// MaxActiveJobsPerUser caps a user's pending+processing typo jobs.
const MaxActiveJobsPerUser = 3

// TypoCheckJob queues one user-submitted text for AI typo correction.
type TypoCheckJob struct {
	Job
	UserID       string
	OriginalText string
	TextHash     string
	Provider     string // empty means "pick by preference order"
	Progress     Progress
	ResultID     string // set only on completion
}

// NewTypoCheckJob validates the input and builds a pending job.
func NewTypoCheckJob(userID, text, provider string) (*TypoCheckJob, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyText
	}
	if len(text) > MaxTextLength {
		return nil, domain.ErrTextTooLong
	}
	return &TypoCheckJob{
		Job: Job{
			ID:         uuid.NewString(),
			Status:     JobStatusPending,
			MaxRetries: DefaultMaxRetries,
			CreatedAt:  time.Now().UTC(),
		},
		UserID:       userID,
		OriginalText: text,
		TextHash:     HashText(text),
		Provider:     provider,
	}, nil
}

// HashText returns the sha256 hex digest used for result caching.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// PollView projects the job into the read-only polling shape.
func (j *TypoCheckJob) PollView() PollStatus {
	return PollStatus{
		ID:     j.ID,
		Status: j.Status,
		Progress: &PollProgress{
			Current:    j.Progress.CurrentChunk,
			Total:      j.Progress.TotalChunks,
			Percentage: j.Progress.Percentage(),
		},
		ErrorMessage: j.ErrorMessage,
		ResultRef:    j.ResultID,
		CreatedAt:    j.CreatedAt,
		CompletedAt:  j.CompletedAt,
	}
}
