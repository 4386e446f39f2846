// Package ingest owns the last-good derived state for each polled feed.
// The detection side lives here: each poll fetches a detection snapshot and
// recomputes the session list in full. On fetch failure the previous list
// is retained unchanged and only flagged stale; callers signal staleness to
// the UI, the engine never serves an empty or partial result in its place.
package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/warden/internal/detection"
	"github.com/linnemanlabs/warden/internal/feeds"
	"github.com/linnemanlabs/warden/internal/session"
	"github.com/linnemanlabs/warden/internal/triage"
)

// DetectionSource is where session polls read detection events.
type DetectionSource interface {
	Query(ctx context.Context, q feeds.DetectionQuery) ([]detection.Event, error)
}

// SessionView is a consistent snapshot of the reconstructed sessions.
type SessionView struct {
	Sessions    []session.Session `json:"sessions"`
	Unconfirmed []session.Session `json:"unconfirmed"`
	Stale       bool              `json:"stale"`
	LastError   string            `json:"last_error,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// SessionsConfig fixes the reconstruction parameters for one mounted view.
type SessionsConfig struct {
	SiteID            string
	NodeID            string
	FetchLimit        int
	InactivityTimeout time.Duration

	// DayScoped restricts reconstruction to events whose local calendar
	// date is today, derived from each event's UTC timestamp through Zone.
	DayScoped bool
	Zone      *time.Location
}

// Sessions polls the detection feed and maintains the session snapshot.
type Sessions struct {
	source  DetectionSource
	cfg     SessionsConfig
	logger  log.Logger
	metrics *triage.Metrics
	nowFn   func() time.Time

	mu          sync.Mutex
	result      session.Result
	stale       bool
	polled      bool
	lastErr     error
	generatedAt time.Time
}

// NewSessions creates the detection-side poll state.
func NewSessions(source DetectionSource, cfg SessionsConfig, logger log.Logger, metrics *triage.Metrics) *Sessions {
	if logger == nil {
		logger = log.Nop()
	}
	if cfg.Zone == nil {
		cfg.Zone = time.UTC
	}
	return &Sessions{
		source:  source,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		nowFn:   time.Now,
	}
}

// Poll runs one tick: fetch, optionally day-scope, reconstruct.
func (s *Sessions) Poll(ctx context.Context) {
	now := s.nowFn()

	q := feeds.DetectionQuery{
		SiteID: s.cfg.SiteID,
		NodeID: s.cfg.NodeID,
		Limit:  s.cfg.FetchLimit,
	}
	if s.cfg.DayScoped {
		// Fetch from local midnight; FilterToday below is still applied so
		// a feed that ignores the from parameter cannot leak yesterday in.
		y, m, d := now.In(s.cfg.Zone).Date()
		q.From = time.Date(y, m, d, 0, 0, 0, 0, s.cfg.Zone)
	}

	events, err := s.source.Query(ctx, q)

	// A fetch that resolves after teardown must not write anything back.
	if ctx.Err() != nil {
		return
	}

	if err != nil {
		s.logger.Warn(ctx, "detection feed fetch failed, keeping last good sessions", "error", err)
		if s.metrics != nil {
			s.metrics.PollsTotal.WithLabelValues("detections", "error").Inc()
		}
		s.mu.Lock()
		s.stale = true
		s.lastErr = err
		s.mu.Unlock()
		return
	}

	if s.cfg.DayScoped {
		events = detection.FilterToday(events, now, s.cfg.Zone)
	}

	res := session.Reconstruct(events, now, s.cfg.InactivityTimeout)

	s.mu.Lock()
	s.result = res
	s.stale = false
	s.polled = true
	s.lastErr = nil
	s.generatedAt = now
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.PollsTotal.WithLabelValues("detections", "ok").Inc()
		active := 0
		for _, sess := range res.Sessions {
			if sess.Status == session.StatusActive {
				active++
			}
		}
		s.metrics.ActiveSessions.Set(float64(active))
	}
}

// Snapshot returns the current session view.
func (s *Sessions) Snapshot() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := SessionView{
		Sessions:    append([]session.Session(nil), s.result.Sessions...),
		Unconfirmed: append([]session.Session(nil), s.result.Unconfirmed...),
		Stale:       s.stale || !s.polled,
		GeneratedAt: s.generatedAt,
	}
	if s.lastErr != nil {
		v.LastError = s.lastErr.Error()
	}
	return v
}
