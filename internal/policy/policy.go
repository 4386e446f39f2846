// Package policy holds the user-scoped triage policy: minimum severity for
// cues, quiet hours, and cue toggles. The policy is durable (read on mount,
// written on change) and rebroadcast in-process so concurrently mounted
// views stay consistent.
package policy

import (
	"fmt"
	"time"

	"github.com/linnemanlabs/warden/internal/alert"
)

// QuietHours is a local-time window during which novelty cues are
// suppressed. Start and End are "HH:MM" in the viewer's zone.
type QuietHours struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// Policy gates novelty cue emission. It is passed explicitly into every
// triage call; there is no ambient global.
type Policy struct {
	MinSeverity   alert.Severity `json:"min_severity"`
	QuietHours    QuietHours     `json:"quiet_hours"`
	VisualEnabled bool           `json:"visual_enabled"`
	SoundEnabled  bool           `json:"sound_enabled"`
	RailOpen      bool           `json:"rail_open"`
}

// Defaults is the built-in policy used when the durable store is empty
// or unreadable.
func Defaults() Policy {
	return Policy{
		MinSeverity:   alert.SeverityWarning,
		QuietHours:    QuietHours{Enabled: false, Start: "22:00", End: "06:00"},
		VisualEnabled: true,
		SoundEnabled:  true,
		RailOpen:      true,
	}
}

// Validate checks the policy fields a client may set.
func (p Policy) Validate() error {
	switch p.MinSeverity {
	case alert.SeverityInfo, alert.SeverityWarning, alert.SeverityCritical:
	default:
		return fmt.Errorf("invalid min_severity %q", p.MinSeverity)
	}
	if p.QuietHours.Enabled {
		if _, err := parseHHMM(p.QuietHours.Start); err != nil {
			return fmt.Errorf("quiet_hours.start: %w", err)
		}
		if _, err := parseHHMM(p.QuietHours.End); err != nil {
			return fmt.Errorf("quiet_hours.end: %w", err)
		}
	}
	return nil
}

// Contains reports whether now falls inside the quiet window.
//
// start == end is never quiet: a zero-width window must not silently
// become "quiet all day". start > end wraps midnight.
func (q QuietHours) Contains(now time.Time) bool {
	if !q.Enabled {
		return false
	}
	start, err := parseHHMM(q.Start)
	if err != nil {
		return false
	}
	end, err := parseHHMM(q.End)
	if err != nil {
		return false
	}
	if start == end {
		return false
	}

	cur := now.Hour()*60 + now.Minute()
	if start < end {
		return start <= cur && cur < end
	}
	return cur >= start || cur < end
}

// parseHHMM converts "HH:MM" to minutes since midnight.
func parseHHMM(s string) (int, error) {
	var hh, mm int
	if _, err := fmt.Sscanf(s, "%d:%d", &hh, &mm); err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return hh*60 + mm, nil
}
