// Package detection defines the plate-read events consumed by the
// correlation engine. Events are produced by the external ANPR ingestion
// system and are never mutated here.
package detection

import (
	"strings"
	"time"
)

// Classification is the ANPR engine's verdict on a plate read.
type Classification string

const (
	ClassVerified    Classification = "VERIFIED"
	ClassNotVerified Classification = "NOT_VERIFIED"
	ClassBlacklist   Classification = "BLACKLIST"
	ClassGuessed     Classification = "GUESSED"
	ClassUnknown     Classification = "UNKNOWN"
)

// ParseClassification maps feed values onto the known set, defaulting
// to UNKNOWN for anything unrecognized.
func ParseClassification(s string) Classification {
	switch Classification(strings.ToUpper(strings.TrimSpace(s))) {
	case ClassVerified:
		return ClassVerified
	case ClassNotVerified:
		return ClassNotVerified
	case ClassBlacklist:
		return ClassBlacklist
	case ClassGuessed:
		return ClassGuessed
	default:
		return ClassUnknown
	}
}

// Event is a single timestamped point detection.
//
// Timestamp is the authoritative ordering key (UTC). LocalTime, when the
// feed supplies it, is a site-local rendering kept for display only;
// nothing in the engine derives ordering or dates from it.
type Event struct {
	IngestionID    int64          `json:"ingestion_id"`
	EntityKey      string         `json:"entity_key"`
	Timestamp      time.Time      `json:"timestamp"`
	LocalTime      string         `json:"local_time,omitempty"`
	Confidence     float64        `json:"confidence"`
	Classification Classification `json:"classification"`
	SourceNode     string         `json:"source_node"`
}

// Valid reports whether the event carries the fields the reconstructor
// requires. Invalid events are dropped, never reported as errors.
func (e Event) Valid() bool {
	return e.EntityKey != "" && !e.Timestamp.IsZero()
}

// NormalizeKey canonicalizes raw plate text into an entity key:
// uppercase, with whitespace and separator runs removed.
func NormalizeKey(plate string) string {
	var b strings.Builder
	b.Grow(len(plate))
	for _, r := range strings.ToUpper(plate) {
		switch r {
		case ' ', '\t', '-', '.', '_':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
