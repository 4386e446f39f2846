package triage

import (
	"context"
	"sync"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/warden/internal/alert"
	"github.com/linnemanlabs/warden/internal/policy"
)

// visualHold is how long the transient visual cue stays lit after a fire.
const visualHold = 2400 * time.Millisecond

// AlertSource is where the feed reads open alerts and sends acknowledgements.
type AlertSource interface {
	Open(ctx context.Context) ([]alert.Record, error)
	Acknowledge(ctx context.Context, id string) error
}

// CueEmitter emits the audio cue for a fired novelty. Implementations must
// never block the caller.
type CueEmitter interface {
	Emit(severity alert.Severity)
}

// View is a consistent snapshot of the feed for display.
type View struct {
	Alerts       []alert.Record `json:"alerts"`
	Novelty      Novelty        `json:"novelty"`
	Watermark    time.Time      `json:"watermark"`
	VisualActive bool           `json:"visual_active"`
	Stale        bool           `json:"stale"`
	LastError    string         `json:"last_error,omitempty"`
	GeneratedAt  time.Time      `json:"generated_at"`
}

// Feed holds the per-mount triage state: the watermark, the local dismissal
// set, and the last good outcome. One Feed exists per mounted alert view;
// it is created on mount and discarded on unmount.
type Feed struct {
	source  AlertSource
	cue     CueEmitter
	logger  log.Logger
	metrics *Metrics
	nowFn   func() time.Time

	mu          sync.Mutex
	pol         policy.Policy
	watermark   time.Time
	dismissed   map[string]struct{}
	sorted      []alert.Record
	novelty     Novelty
	visualUntil time.Time
	stale       bool
	polled      bool
	lastErr     error
	generatedAt time.Time
}

// NewFeed creates a feed with the given source, cue emitter, and initial
// policy. The cue emitter may be nil to disable audio entirely.
func NewFeed(source AlertSource, cue CueEmitter, pol policy.Policy, logger log.Logger, metrics *Metrics) *Feed {
	if logger == nil {
		logger = log.Nop()
	}
	return &Feed{
		source:    source,
		cue:       cue,
		logger:    logger,
		metrics:   metrics,
		nowFn:     time.Now,
		pol:       pol,
		dismissed: make(map[string]struct{}),
	}
}

// SetPolicy swaps the active policy. Called from the policy bus so every
// mounted feed follows user changes without re-reading durable storage.
func (f *Feed) SetPolicy(p policy.Policy) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pol = p
}

// Poll runs one tick: fetch the open feed, triage it, and update state.
// On fetch failure the last good view is retained and only marked stale;
// the next scheduled tick retries naturally.
func (f *Feed) Poll(ctx context.Context) {
	records, err := f.source.Open(ctx)
	now := f.nowFn()

	// A fetch that resolves after teardown must not write anything back.
	if ctx.Err() != nil {
		return
	}

	if err != nil {
		f.logger.Warn(ctx, "alert feed fetch failed, keeping last good view", "error", err)
		if f.metrics != nil {
			f.metrics.PollsTotal.WithLabelValues("alerts", "error").Inc()
		}
		f.mu.Lock()
		f.stale = true
		f.lastErr = err
		f.mu.Unlock()
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	out := Triage(records, f.pol, f.watermark, now)
	f.watermark = out.Watermark
	f.novelty = out.Novelty
	f.stale = false
	f.polled = true
	f.lastErr = nil
	f.generatedAt = now

	// Dismissals for records the backend no longer reports are moot:
	// resolution happened externally. Dropping them keeps the set bounded.
	present := make(map[string]struct{}, len(records))
	for _, r := range records {
		present[r.ID] = struct{}{}
	}
	for id := range f.dismissed {
		if _, ok := present[id]; !ok {
			delete(f.dismissed, id)
		}
	}

	f.sorted = f.sorted[:0]
	for _, r := range out.Sorted {
		if _, ok := f.dismissed[r.ID]; ok {
			continue
		}
		f.sorted = append(f.sorted, r)
	}

	if f.metrics != nil {
		f.metrics.PollsTotal.WithLabelValues("alerts", "ok").Inc()
		f.metrics.OpenAlerts.Set(float64(len(out.Sorted)))
	}

	if out.Novelty.Fired {
		trigger := out.Novelty.Trigger
		f.logger.Info(ctx, "novelty fired",
			"alert_id", trigger.ID,
			"category", trigger.Category,
			"severity", trigger.Severity,
			"watermark", f.watermark,
		)
		if f.metrics != nil {
			f.metrics.NoveltyFires.WithLabelValues(string(trigger.Severity)).Inc()
		}
		if f.pol.VisualEnabled {
			f.visualUntil = now.Add(visualHold)
		}
		if f.pol.SoundEnabled && f.cue != nil {
			f.cue.Emit(trigger.Severity)
		}
	}
}

// Acknowledge suppresses the record locally and fires a best-effort
// upstream acknowledge. The local suppression stands even if the upstream
// call fails; failures are logged, never surfaced as fatal.
func (f *Feed) Acknowledge(ctx context.Context, id string) {
	f.mu.Lock()
	f.dismissed[id] = struct{}{}
	f.sorted = withoutID(f.sorted, id)
	f.mu.Unlock()

	ackID := ulid.Make().String()
	go func(ctx context.Context) {
		err := f.source.Acknowledge(ctx, id)
		if f.metrics != nil {
			outcome := "ok"
			if err != nil {
				outcome = "error"
			}
			f.metrics.AcksTotal.WithLabelValues(outcome).Inc()
		}
		if err != nil {
			f.logger.Warn(ctx, "upstream acknowledge failed, local suppression stands",
				"alert_id", id, "ack_id", ackID, "error", err)
			return
		}
		f.logger.Info(ctx, "alert acknowledged upstream", "alert_id", id, "ack_id", ackID)
	}(context.WithoutCancel(ctx))
}

// Restore removes a local dismissal so the record shows again on the next
// poll. Polls never re-add dismissals on their own, so a restored record
// stays visible for as long as the backend reports it open.
func (f *Feed) Restore(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.dismissed, id)
}

// Snapshot returns the current view, optionally narrowed to a site/node
// scope. Scoping applies only to the displayed list; novelty and the
// watermark always reflect the unscoped feed.
func (f *Feed) Snapshot(siteID, nodeID string) View {
	now := f.nowFn()

	f.mu.Lock()
	defer f.mu.Unlock()

	alerts := make([]alert.Record, 0, len(f.sorted))
	for _, r := range f.sorted {
		if r.InScope(siteID, nodeID) {
			alerts = append(alerts, r)
		}
	}

	v := View{
		Alerts:       alerts,
		Novelty:      f.novelty,
		Watermark:    f.watermark,
		VisualActive: now.Before(f.visualUntil),
		Stale:        f.stale || !f.polled,
		GeneratedAt:  f.generatedAt,
	}
	if f.lastErr != nil {
		v.LastError = f.lastErr.Error()
	}
	return v
}

func withoutID(records []alert.Record, id string) []alert.Record {
	out := records[:0]
	for _, r := range records {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}
