package alert

import (
	"testing"
	"time"
)

func TestSeverityWeightOrdering(t *testing.T) {
	t.Parallel()

	if !(SeverityWeight(SeverityCritical) > SeverityWeight(SeverityWarning)) {
		t.Error("CRITICAL must outrank WARNING")
	}
	if !(SeverityWeight(SeverityWarning) > SeverityWeight(SeverityInfo)) {
		t.Error("WARNING must outrank INFO")
	}
	if SeverityWeight("bogus") >= SeverityWeight(SeverityInfo) {
		t.Error("unknown severity must rank below INFO")
	}
}

func TestParseSeverity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Severity
	}{
		{"critical", SeverityCritical},
		{" WARNING ", SeverityWarning},
		{"info", SeverityInfo},
		{"", SeverityInfo},
		{"weird", SeverityInfo},
	}
	for _, tt := range tests {
		if got := ParseSeverity(tt.in); got != tt.want {
			t.Errorf("ParseSeverity(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCategoryWeightTable(t *testing.T) {
	t.Parallel()

	if !(CategoryWeight(CategoryFire) > CategoryWeight(CategoryBlacklistPerson)) {
		t.Error("fire must outrank blacklist person match")
	}
	if !(CategoryWeight(CategoryBlacklistPerson) > CategoryWeight(CategoryBlacklistPlate)) {
		t.Error("blacklist person must outrank blacklist plate")
	}
	if !(CategoryWeight(CategoryBlacklistPlate) > CategoryWeight(CategoryUnverifiedPlate)) {
		t.Error("blacklist plate must outrank unverified plate")
	}
	if CategoryWeight(CategoryUnverifiedPlate) != CategoryWeight(CategoryAfterHoursPerson) {
		t.Error("unverified plate and after-hours person share a weight")
	}
	if CategoryWeight(CategoryAfterHoursPerson) != CategoryWeight(CategoryAfterHoursMotion) {
		t.Error("after-hours person and vehicle share a weight")
	}
	if CategoryWeight("door_left_open") != 0 {
		t.Error("unlisted categories carry weight 0")
	}
}

func TestRecordInScope(t *testing.T) {
	t.Parallel()

	r := Record{ID: "a", OccurredAt: time.Now(), Scope: Scope{SiteID: "s1", NodeID: "n1"}}

	tests := []struct {
		site, node string
		want       bool
	}{
		{"", "", true},
		{"s1", "", true},
		{"s1", "n1", true},
		{"s2", "", false},
		{"s1", "n2", false},
		{"", "n1", true},
	}
	for _, tt := range tests {
		if got := r.InScope(tt.site, tt.node); got != tt.want {
			t.Errorf("InScope(%q, %q) = %v, want %v", tt.site, tt.node, got, tt.want)
		}
	}
}
