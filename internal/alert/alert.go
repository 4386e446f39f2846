// Package alert defines the open-alert records consumed by the triage
// engine and their severity/category orderings.
package alert

import (
	"strings"
	"time"
)

// Severity is the totally ordered urgency of an alert.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// SeverityWeight ranks severities for comparison. Unknown values rank
// below INFO so a malformed record can never outrank a real one.
func SeverityWeight(s Severity) int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// ParseSeverity maps feed values onto the known set.
func ParseSeverity(s string) Severity {
	switch Severity(strings.ToUpper(strings.TrimSpace(s))) {
	case SeverityCritical:
		return SeverityCritical
	case SeverityWarning:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// Category identifies the kind of surveillance alert.
type Category string

const (
	CategoryFire             Category = "fire"
	CategoryBlacklistPerson  Category = "blacklist_person_match"
	CategoryBlacklistPlate   Category = "blacklist_plate"
	CategoryUnverifiedPlate  Category = "unverified_plate"
	CategoryAfterHoursPerson Category = "after_hours_person"
	CategoryAfterHoursMotion Category = "after_hours_vehicle"
)

// categoryWeights is the fixed display-priority table. Categories not
// listed carry weight 0 and sort purely by severity and recency.
var categoryWeights = map[Category]int{
	CategoryFire:             100,
	CategoryBlacklistPerson:  90,
	CategoryBlacklistPlate:   80,
	CategoryUnverifiedPlate:  60,
	CategoryAfterHoursPerson: 60,
	CategoryAfterHoursMotion: 60,
}

// CategoryWeight returns the display priority for a category.
func CategoryWeight(c Category) int {
	return categoryWeights[c]
}

// Scope narrows a record to a site and optionally a node within it.
type Scope struct {
	SiteID string `json:"site_id"`
	NodeID string `json:"node_id,omitempty"`
}

// Record is an open alert as reported by the external system of record.
// Disappearance from the open feed implies external resolution; records
// are never mutated once observed.
type Record struct {
	ID         string            `json:"id"`
	Category   Category          `json:"category"`
	Severity   Severity          `json:"severity"`
	OccurredAt time.Time         `json:"occurred_at"`
	Scope      Scope             `json:"scope"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Valid reports whether the record carries the fields triage requires.
func (r Record) Valid() bool {
	return r.ID != "" && !r.OccurredAt.IsZero()
}

// InScope reports whether the record matches a site/node filter. Empty
// filter fields match everything.
func (r Record) InScope(siteID, nodeID string) bool {
	if siteID != "" && r.Scope.SiteID != siteID {
		return false
	}
	if nodeID != "" && r.Scope.NodeID != nodeID {
		return false
	}
	return true
}
