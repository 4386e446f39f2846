// Package poller runs a repeating poll with a per-feed single-flight
// guard: a tick that finds the previous poll of the same feed still in
// flight is skipped outright, never queued. During a backend stall this
// self-limits the request rate to one outstanding request per feed.
package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/warden/internal/triage"
)

// Poller drives one feed. The two feeds of the engine each get their own
// Poller; they share nothing but the metrics registry.
type Poller struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context)
	logger   log.Logger
	metrics  *triage.Metrics

	inFlight atomic.Bool
	wg       sync.WaitGroup
}

// New creates a poller that invokes fn every interval. fn is responsible
// for checking ctx before mutating shared state, so a result that resolves
// after teardown is discarded rather than written back.
func New(name string, interval time.Duration, fn func(ctx context.Context), logger log.Logger, metrics *triage.Metrics) *Poller {
	if logger == nil {
		logger = log.Nop()
	}
	return &Poller{
		name:     name,
		interval: interval,
		fn:       fn,
		logger:   logger,
		metrics:  metrics,
	}
}

// Start begins polling: one immediate poll, then one per interval until
// ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		p.tick(ctx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.tick(ctx)
			}
		}
	}()
}

// Wait blocks until the poll loop has exited. In-flight polls launched
// before cancellation may still be running; their writes are guarded by
// the ctx checks inside fn.
func (p *Poller) Wait() {
	p.wg.Wait()
}

func (p *Poller) tick(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		if p.metrics != nil {
			p.metrics.PollsSkipped.WithLabelValues(p.name).Inc()
		}
		p.logger.Info(ctx, "tick skipped, previous poll still in flight", "feed", p.name)
		return
	}

	// The poll runs off the ticker goroutine so a hung request delays only
	// its own feed's guard release, not the tick schedule.
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.inFlight.Store(false)

		start := time.Now()
		p.fn(ctx)
		if p.metrics != nil {
			p.metrics.PollDuration.WithLabelValues(p.name).Observe(time.Since(start).Seconds())
		}
	}()
}
