package detection

import "time"

// FilterToday returns the subset of events whose local calendar date
// matches now's date in loc.
//
// The local date is always derived from the event's UTC timestamp
// converted through loc. The feed's own local-time rendering is
// deliberately not consulted: mixing the two derivations within one
// reconstruction makes events near midnight land on different sides of
// the day boundary depending on which field a call site trusted.
func FilterToday(events []Event, now time.Time, loc *time.Location) []Event {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := now.In(loc).Date()

	out := make([]Event, 0, len(events))
	for _, e := range events {
		ey, em, ed := e.Timestamp.In(loc).Date()
		if ey == y && em == m && ed == d {
			out = append(out, e)
		}
	}
	return out
}
