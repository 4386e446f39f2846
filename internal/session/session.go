// Package session reconstructs entity presence sessions from snapshots of
// point detections. Reconstruction is a pure function of its inputs: every
// call recomputes the full session list, nothing is patched incrementally.
package session

import (
	"time"

	"github.com/linnemanlabs/warden/internal/detection"
)

// Status tracks whether an entity is still considered on site.
type Status string

const (
	// StatusActive means the entity was seen within the inactivity window.
	StatusActive Status = "ACTIVE"

	// StatusClosed means the inactivity window has elapsed since the last detection.
	StatusClosed Status = "CLOSED"
)

// Session is a reconstructed presence interval for one entity.
type Session struct {
	EntityKey            string                   `json:"entity_key"`
	FirstSeen            time.Time                `json:"first_seen"`
	LastSeen             time.Time                `json:"last_seen"`
	AggregateConfidence  float64                  `json:"aggregate_confidence"`
	MemberCount          int                      `json:"member_count"`
	Status               Status                   `json:"status"`
	LatestClassification detection.Classification `json:"latest_classification"`
	SourceNode           string                   `json:"source_node"`
}

// Result splits reconstructed sessions into the primary view and the
// unconfirmed view. Sessions whose latest classification is GUESSED never
// appear in Sessions; they are a hard filter, not a sort.
type Result struct {
	Sessions    []Session `json:"sessions"`
	Unconfirmed []Session `json:"unconfirmed"`
}
