// Package ratelimit implements a token-bucket throttle used to keep
// outbound provider calls polite.
package ratelimit

import (
	"sync"
	"time"
)

const pollInterval = 10 * time.Millisecond

// Bucket is a thread-safe token bucket. Tokens refill continuously at
// rate/period; bursts up to rate are allowed. Elapsed time comes from
// time.Since, which reads the monotonic clock, so wall-clock jumps do
// not skew refills.
type Bucket struct {
	mu         sync.Mutex
	rate       int
	period     time.Duration
	tokens     float64
	lastRefill time.Time
}

// NewBucket allows rate acquisitions per period. A non-positive rate
// defaults to 50/s, the politeness budget used for external APIs.
func NewBucket(rate int, period time.Duration) *Bucket {
	if rate <= 0 {
		rate = 50
	}
	if period <= 0 {
		period = time.Second
	}
	return &Bucket{
		rate:       rate,
		period:     period,
		tokens:     float64(rate),
		lastRefill: time.Now(),
	}
}

// refill must be called with mu held.
func (b *Bucket) refill() {
	now := time.Now()
	elapsed := now.Sub(b.lastRefill)
	b.tokens += elapsed.Seconds() * float64(b.rate) / b.period.Seconds()
	if b.tokens > float64(b.rate) {
		b.tokens = float64(b.rate)
	}
	b.lastRefill = now
}

// TryAcquire takes one token without blocking. It returns false when
// the bucket is empty.
func (b *Bucket) TryAcquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill()
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Acquire blocks until a token is available or the timeout elapses.
// A zero timeout waits forever.
func (b *Bucket) Acquire(timeout time.Duration) bool {
	deadline := time.Time{}
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		if b.TryAcquire() {
			return true
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return false
		}
		time.Sleep(pollInterval)
	}
}

// Tokens reports the current token count after a refill pass.
func (b *Bucket) Tokens() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill()
	return b.tokens
}

// Reset restores full capacity and restarts the refill clock.
func (b *Bucket) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = float64(b.rate)
	b.lastRefill = time.Now()
}
