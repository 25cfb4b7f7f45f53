// File: internal/infra/adapters/ai/limit_wrapper.go
package ai

import (
	"context"
	"errors"
	"time"

	"paper-assistant/internal/domain/ports/adapter"
	"paper-assistant/internal/ratelimit"
)

// Compile-time check
var _ adapter.Corrector = (*limitedCorrector)(nil)

// acquireTimeout bounds how long a pipeline worker waits for a token before
// the call is treated as a transient failure.
const acquireTimeout = 30 * time.Second

type limitedCorrector struct {
	inner  adapter.Corrector
	bucket *ratelimit.Bucket
}

// NewLimitedCorrector gates CheckText calls behind a shared token bucket so
// all providers together stay under one outbound request rate.
func NewLimitedCorrector(inner adapter.Corrector, bucket *ratelimit.Bucket) adapter.Corrector {
	if bucket == nil {
		return inner
	}
	return &limitedCorrector{inner: inner, bucket: bucket}
}

func (l *limitedCorrector) Name() string { return l.inner.Name() }

func (l *limitedCorrector) Available() bool { return l.inner.Available() }

func (l *limitedCorrector) CheckText(ctx context.Context, text string) (*adapter.CorrectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !l.bucket.Acquire(acquireTimeout) {
		return nil, errors.New("rate limit: timed out waiting for a token")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.inner.CheckText(ctx, text)
}
