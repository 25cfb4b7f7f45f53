// Package sched owns the periodic drivers that drain the job queues.
package sched

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Pipeline is the minimal interface the poller needs from a job
// pipeline: a stale-job sweep and a "process one unit of work" step.
// ProcessOne reports whether it found a job; errors it returns are
// infrastructure failures, per-job failures are recorded on the job.
type Pipeline interface {
	Name() string
	SweepStale(ctx context.Context) (int, error)
	ProcessOne(ctx context.Context) (bool, error)
}

type pollerState int

const (
	stateStopped pollerState = iota
	stateRunning
	statePaused
)

// Poller drives a Pipeline on a fixed interval with adaptive idling:
// it pauses after maxIdleChecks consecutive empty ticks and resumes
// when a producer calls WakeUp after enqueuing.
type Poller struct {
	interval      time.Duration
	maxIdleChecks int
	pipeline      Pipeline
	log           *zerolog.Logger

	mu        sync.Mutex
	state     pollerState
	idleCount int

	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller builds a poller for one pipeline. Non-positive interval
// defaults to 5s, maxIdleChecks to 10.
func NewPoller(pipeline Pipeline, interval time.Duration, maxIdleChecks int, logger *zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if maxIdleChecks <= 0 {
		maxIdleChecks = 10
	}
	plog := logger.With().Str("component", "Poller").Str("pipeline", pipeline.Name()).Logger()
	return &Poller{
		interval:      interval,
		maxIdleChecks: maxIdleChecks,
		pipeline:      pipeline,
		log:           &plog,
		wake:          make(chan struct{}, 1),
	}
}

// Start begins ticking in a background goroutine. Calling Start on a
// poller that is already running has no effect.
func (p *Poller) Start(parentCtx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != stateStopped {
		return
	}
	p.ctx, p.cancel = context.WithCancel(parentCtx)
	p.done = make(chan struct{})
	p.state = stateRunning
	p.idleCount = 0

	go p.loop()
	p.log.Info().Dur("interval", p.interval).Int("max_idle_checks", p.maxIdleChecks).Msg("poller started")
}

func (p *Poller) loop() {
	ticker := time.NewTicker(p.interval)
	defer func() {
		ticker.Stop()
		close(p.done)
	}()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-p.wake:
			p.resume()
			p.tick()
		case <-ticker.C:
			if p.paused() {
				continue
			}
			p.tick()
		}
	}
}

// tick runs one sweep-and-process cycle. A panic or error inside the
// pipeline never escapes; the loop proceeds on the next interval.
func (p *Poller) tick() {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Str("panic", fmt.Sprint(r)).Msg("pipeline panicked during tick")
		}
	}()

	if n, err := p.pipeline.SweepStale(p.ctx); err != nil {
		p.log.Error().Err(err).Msg("stale sweep failed")
	} else if n > 0 {
		p.log.Warn().Int("count", n).Msg("stale jobs forced to failed")
	}

	found, err := p.pipeline.ProcessOne(p.ctx)
	if err != nil {
		p.log.Error().Err(err).Msg("process one failed")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if found {
		p.idleCount = 0
		return
	}
	p.idleCount++
	if p.state == stateRunning && p.idleCount >= p.maxIdleChecks {
		p.state = statePaused
		p.log.Info().Int("idle_checks", p.idleCount).Msg("no work, pausing until wake-up")
	}
}

// WakeUp resets the idle counter and resumes a paused poller. It is
// non-blocking and idempotent, so producers call it right after every
// successful enqueue.
func (p *Poller) WakeUp() {
	p.mu.Lock()
	p.idleCount = 0
	running := p.state == stateRunning
	p.mu.Unlock()
	if running {
		return
	}
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Poller) resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == statePaused {
		p.state = stateRunning
		p.idleCount = 0
		p.log.Info().Msg("poller resumed")
	}
}

func (p *Poller) paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == statePaused
}

// Running reports whether the poller is actively ticking (not paused,
// not stopped).
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == stateRunning
}

// Shutdown stops the poller and waits for the loop to exit. It is safe
// to call from any state, repeatedly; no tick fires after it returns.
func (p *Poller) Shutdown() {
	p.mu.Lock()
	if p.state == stateStopped {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.state = stateStopped
	p.mu.Unlock()

	cancel()
	<-done
	p.log.Info().Msg("poller stopped")
}
