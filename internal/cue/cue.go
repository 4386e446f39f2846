// Package cue emits the short audio/visual notification cues that accompany
// a novelty fire. Emission is cosmetic and strictly best-effort: it never
// blocks the triage pipeline, never returns an error to it, and every
// emission owns its own short-lived resources.
package cue

import (
	"context"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/warden/internal/alert"
	"github.com/linnemanlabs/warden/internal/triage"
)

// toneDuration is the length of a single cue tone.
const toneDuration = 180 * time.Millisecond

// sinkTimeout bounds each sink delivery so a stuck sink cannot pile up
// goroutines across many emissions.
const sinkTimeout = 5 * time.Second

// Tone describes one cue emission. Pitch rises strictly with severity so
// the ear can rank an alert without looking at the screen.
type Tone struct {
	ID        string         `json:"id"`
	Severity  alert.Severity `json:"severity"`
	FreqHz    int            `json:"freq_hz"`
	Duration  time.Duration  `json:"duration"`
	EmittedAt time.Time      `json:"emitted_at"`
}

// freqFor maps severity rank to pitch.
func freqFor(sev alert.Severity) int {
	switch sev {
	case alert.SeverityCritical:
		return 880
	case alert.SeverityWarning:
		return 660
	default:
		return 440
	}
}

// Sink delivers a tone somewhere: a dashboard push channel, a wall-panel
// buzzer bridge, a chat webhook. Failures are the synthesizer's to swallow.
type Sink interface {
	Play(ctx context.Context, t Tone) error
}

// Synthesizer fans tones out to its sinks, fire-and-forget.
type Synthesizer struct {
	sinks   []Sink
	logger  log.Logger
	metrics *triage.Metrics
}

// New creates a Synthesizer. With no sinks every Emit is a silent no-op,
// which is the correct behavior on an unsupported platform.
func New(logger log.Logger, metrics *triage.Metrics, sinks ...Sink) *Synthesizer {
	if logger == nil {
		logger = log.Nop()
	}
	return &Synthesizer{sinks: sinks, logger: logger, metrics: metrics}
}

// Emit synthesizes the tone for a severity and dispatches it to every sink
// in its own goroutine. Emit returns immediately; delivery errors are
// logged and otherwise swallowed.
func (s *Synthesizer) Emit(severity alert.Severity) {
	t := Tone{
		ID:        ulid.Make().String(),
		Severity:  severity,
		FreqHz:    freqFor(severity),
		Duration:  toneDuration,
		EmittedAt: time.Now(),
	}

	for _, sink := range s.sinks {
		go func(sink Sink) {
			ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
			defer cancel()

			err := sink.Play(ctx, t)
			if s.metrics != nil {
				outcome := "ok"
				if err != nil {
					outcome = "error"
				}
				s.metrics.CuesTotal.WithLabelValues(string(severity), outcome).Inc()
			}
			if err != nil {
				s.logger.Warn(ctx, "cue sink failed",
					"cue_id", t.ID, "severity", severity, "error", err)
			}
		}(sink)
	}
}
