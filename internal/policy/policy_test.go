package policy

import (
	"testing"
	"time"

	"github.com/linnemanlabs/warden/internal/alert"
)

func clock(hh, mm int) time.Time {
	return time.Date(2026, 8, 24, hh, mm, 0, 0, time.UTC)
}

func TestQuietHours_WrapsMidnight(t *testing.T) {
	t.Parallel()

	q := QuietHours{Enabled: true, Start: "22:00", End: "06:00"}

	tests := []struct {
		hh, mm int
		want   bool
	}{
		{23, 0, true},
		{5, 0, true},
		{12, 0, false},
		{22, 0, true},  // inclusive start
		{6, 0, false},  // exclusive end
		{21, 59, false},
	}
	for _, tt := range tests {
		if got := q.Contains(clock(tt.hh, tt.mm)); got != tt.want {
			t.Errorf("Contains(%02d:%02d) = %v, want %v", tt.hh, tt.mm, got, tt.want)
		}
	}
}

func TestQuietHours_PlainWindow(t *testing.T) {
	t.Parallel()

	q := QuietHours{Enabled: true, Start: "09:00", End: "17:00"}

	if !q.Contains(clock(9, 0)) {
		t.Error("start is inclusive")
	}
	if q.Contains(clock(17, 0)) {
		t.Error("end is exclusive")
	}
	if q.Contains(clock(8, 59)) || q.Contains(clock(20, 0)) {
		t.Error("outside window must not be quiet")
	}
}

func TestQuietHours_EqualStartEndNeverQuiet(t *testing.T) {
	t.Parallel()

	q := QuietHours{Enabled: true, Start: "08:00", End: "08:00"}
	for hh := 0; hh < 24; hh++ {
		if q.Contains(clock(hh, 0)) {
			t.Fatalf("start==end must never be quiet, but %02d:00 was", hh)
		}
	}
}

func TestQuietHours_DisabledOrMalformed(t *testing.T) {
	t.Parallel()

	if (QuietHours{Enabled: false, Start: "00:00", End: "23:59"}).Contains(clock(12, 0)) {
		t.Error("disabled window must not be quiet")
	}
	if (QuietHours{Enabled: true, Start: "nope", End: "06:00"}).Contains(clock(12, 0)) {
		t.Error("malformed start must fail open (not quiet)")
	}
	if (QuietHours{Enabled: true, Start: "22:00", End: "25:99"}).Contains(clock(23, 0)) {
		t.Error("out-of-range end must fail open (not quiet)")
	}
}

func TestPolicyValidate(t *testing.T) {
	t.Parallel()

	p := Defaults()
	if err := p.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}

	p.MinSeverity = "LOUD"
	if err := p.Validate(); err == nil {
		t.Error("expected error for unknown severity")
	}

	p = Defaults()
	p.QuietHours = QuietHours{Enabled: true, Start: "26:00", End: "06:00"}
	if err := p.Validate(); err == nil {
		t.Error("expected error for invalid quiet start")
	}
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	p := Defaults()
	if p.MinSeverity != alert.SeverityWarning {
		t.Errorf("MinSeverity = %q, want WARNING", p.MinSeverity)
	}
	if p.QuietHours.Enabled {
		t.Error("quiet hours disabled by default")
	}
	if !p.VisualEnabled || !p.SoundEnabled {
		t.Error("cues enabled by default")
	}
}

func TestBus_PublishReachesAllSubscribers(t *testing.T) {
	t.Parallel()

	b := NewBus()
	ch1, cancel1 := b.Subscribe()
	ch2, cancel2 := b.Subscribe()
	defer cancel1()
	defer cancel2()

	p := Defaults()
	p.MinSeverity = alert.SeverityCritical
	b.Publish(p)

	for i, ch := range []<-chan Policy{ch1, ch2} {
		select {
		case got := <-ch:
			if got.MinSeverity != alert.SeverityCritical {
				t.Errorf("subscriber %d got %q, want CRITICAL", i, got.MinSeverity)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d never received the update", i)
		}
	}
}

func TestBus_SlowSubscriberGetsNewestValue(t *testing.T) {
	t.Parallel()

	b := NewBus()
	ch, cancel := b.Subscribe()
	defer cancel()

	first := Defaults()
	first.MinSeverity = alert.SeverityInfo
	second := Defaults()
	second.MinSeverity = alert.SeverityCritical

	b.Publish(first)
	b.Publish(second) // coalesces over the undrained first

	got := <-ch
	if got.MinSeverity != alert.SeverityCritical {
		t.Errorf("got %q, want newest value CRITICAL", got.MinSeverity)
	}
}

func TestBus_CancelClosesChannel(t *testing.T) {
	t.Parallel()

	b := NewBus()
	ch, cancel := b.Subscribe()
	cancel()
	cancel() // second cancel is a no-op

	if _, ok := <-ch; ok {
		t.Error("expected closed channel after cancel")
	}

	// Publishing after cancel must not panic.
	b.Publish(Defaults())
}
