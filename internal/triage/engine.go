package triage

import (
	"sort"
	"time"

	"github.com/linnemanlabs/warden/internal/alert"
	"github.com/linnemanlabs/warden/internal/policy"
)

// Novelty signals that a new qualifying alert appeared since the previous
// watermark. Trigger is the record that fired it.
type Novelty struct {
	Fired   bool          `json:"fired"`
	Trigger *alert.Record `json:"trigger,omitempty"`
}

// Outcome is the result of one triage pass over the raw feed.
type Outcome struct {
	Sorted    []alert.Record `json:"sorted"`
	Novelty   Novelty        `json:"novelty"`
	Watermark time.Time      `json:"watermark"`
}

// Triage produces the display ordering, the novelty signal, and the advanced
// watermark for one snapshot of the open-alert feed. It is pure: all state
// (previous watermark, dismissals) lives with the caller.
//
// The priority sort is display-only. Novelty is computed independently, from
// pure recency over the raw feed: the newest record fires iff a previous
// watermark exists, the record is newer than it, its severity meets the
// policy minimum, and now is outside quiet hours. The watermark advances to
// the newest observed occurred_at regardless of whether the record
// qualified, so a suppressed record can never fire on a later poll. It never
// moves backwards.
func Triage(raw []alert.Record, pol policy.Policy, prevWatermark, now time.Time) Outcome {
	valid := make([]alert.Record, 0, len(raw))
	for _, r := range raw {
		if r.Valid() {
			valid = append(valid, r)
		}
	}

	sorted := make([]alert.Record, len(valid))
	copy(sorted, valid)
	sort.SliceStable(sorted, func(i, j int) bool {
		ci, cj := alert.CategoryWeight(sorted[i].Category), alert.CategoryWeight(sorted[j].Category)
		if ci != cj {
			return ci > cj
		}
		si, sj := alert.SeverityWeight(sorted[i].Severity), alert.SeverityWeight(sorted[j].Severity)
		if si != sj {
			return si > sj
		}
		if !sorted[i].OccurredAt.Equal(sorted[j].OccurredAt) {
			return sorted[i].OccurredAt.After(sorted[j].OccurredAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	out := Outcome{Sorted: sorted, Watermark: prevWatermark}

	newest := newestRecord(valid)
	if newest == nil {
		return out
	}
	if newest.OccurredAt.After(out.Watermark) {
		out.Watermark = newest.OccurredAt
	}

	qualifies := alert.SeverityWeight(newest.Severity) >= alert.SeverityWeight(pol.MinSeverity) &&
		!pol.QuietHours.Contains(now)

	// A zero previous watermark means this is the very first poll: never
	// fire, or every mount would open with a cue storm.
	if !prevWatermark.IsZero() && newest.OccurredAt.After(prevWatermark) && qualifies {
		out.Novelty = Novelty{Fired: true, Trigger: newest}
	}

	return out
}

// newestRecord returns the record with the greatest occurred_at, or nil for
// an empty snapshot. Ties keep the earliest-listed record.
func newestRecord(records []alert.Record) *alert.Record {
	var newest *alert.Record
	for i := range records {
		if newest == nil || records[i].OccurredAt.After(newest.OccurredAt) {
			newest = &records[i]
		}
	}
	return newest
}
