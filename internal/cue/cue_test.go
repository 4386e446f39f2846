package cue

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/warden/internal/alert"
)

// recordingSink captures played tones.
type recordingSink struct {
	mu    sync.Mutex
	tones []Tone
	err   error
	done  chan struct{}
}

func (r *recordingSink) Play(_ context.Context, t Tone) error {
	r.mu.Lock()
	r.tones = append(r.tones, t)
	r.mu.Unlock()
	if r.done != nil {
		r.done <- struct{}{}
	}
	return r.err
}

func TestFreqRisesWithSeverity(t *testing.T) {
	t.Parallel()

	info := freqFor(alert.SeverityInfo)
	warn := freqFor(alert.SeverityWarning)
	crit := freqFor(alert.SeverityCritical)

	if !(info < warn && warn < crit) {
		t.Errorf("pitch must rise with severity: info=%d warn=%d crit=%d", info, warn, crit)
	}
}

func TestEmit_DispatchesToAllSinks(t *testing.T) {
	t.Parallel()

	a := &recordingSink{done: make(chan struct{}, 1)}
	b := &recordingSink{done: make(chan struct{}, 1)}
	s := New(log.Nop(), nil, a, b)

	s.Emit(alert.SeverityWarning)

	for i, sink := range []*recordingSink{a, b} {
		select {
		case <-sink.done:
		case <-time.After(time.Second):
			t.Fatalf("sink %d never received the tone", i)
		}
		sink.mu.Lock()
		tone := sink.tones[0]
		sink.mu.Unlock()
		if tone.Severity != alert.SeverityWarning {
			t.Errorf("sink %d severity = %q, want WARNING", i, tone.Severity)
		}
		if tone.FreqHz != 660 {
			t.Errorf("sink %d freq = %d, want 660", i, tone.FreqHz)
		}
		if tone.Duration != toneDuration {
			t.Errorf("sink %d duration = %v, want %v", i, tone.Duration, toneDuration)
		}
		if tone.ID == "" {
			t.Errorf("sink %d tone has empty id", i)
		}
	}
}

func TestEmit_SinkErrorIsSwallowed(t *testing.T) {
	t.Parallel()

	failing := &recordingSink{err: errors.New("buzzer offline"), done: make(chan struct{}, 1)}
	s := New(log.Nop(), nil, failing)

	// Emit must neither panic nor block regardless of sink failure.
	s.Emit(alert.SeverityCritical)

	select {
	case <-failing.done:
	case <-time.After(time.Second):
		t.Fatal("sink was never invoked")
	}
}

func TestEmit_NoSinksIsNoop(t *testing.T) {
	t.Parallel()

	s := New(log.Nop(), nil)
	s.Emit(alert.SeverityInfo) // must not panic
}

func TestWebhookSink_PostsTone(t *testing.T) {
	t.Parallel()

	got := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		got <- payload
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL)
	tone := Tone{ID: "01TEST", Severity: alert.SeverityCritical, FreqHz: 880, Duration: toneDuration, EmittedAt: time.Now()}
	if err := sink.Play(context.Background(), tone); err != nil {
		t.Fatalf("Play: %v", err)
	}

	payload := <-got
	if payload["cue_id"] != "01TEST" {
		t.Errorf("cue_id = %v, want 01TEST", payload["cue_id"])
	}
	if payload["freq_hz"] != float64(880) {
		t.Errorf("freq_hz = %v, want 880", payload["freq_hz"])
	}
	if payload["duration_ms"] != float64(180) {
		t.Errorf("duration_ms = %v, want 180", payload["duration_ms"])
	}
}

func TestWebhookSink_Non2xxIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL)
	if err := sink.Play(context.Background(), Tone{ID: "x"}); err == nil {
		t.Error("expected error for 502 response")
	}
}
