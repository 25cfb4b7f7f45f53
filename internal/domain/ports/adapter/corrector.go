package adapter

import (
	"context"

	"paper-assistant/internal/domain/model"
)

// CorrectionResult is what a provider returns for one bounded chunk.
// Issue positions are local to the chunk that was sent.
type CorrectionResult struct {
	CorrectedText string
	Issues        []model.TypoIssue
}

// Corrector is the port for an external text-correction capability.
// CheckText takes one chunk no larger than the pipeline's chunk size
// and blocks until the provider answers or ctx is done.
type Corrector interface {
	Name() string
	Available() bool
	CheckText(ctx context.Context, text string) (*CorrectionResult, error)
}
