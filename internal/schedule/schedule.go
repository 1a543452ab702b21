// Package schedule holds the interval rules for event scheduling. Events
// occupy half-open intervals [start, end); conflict detection is scoped to a
// single owner and evaluated by the store inside the owning transaction.
package schedule

import "time"

// ValidInterval reports whether start/end form a usable event interval.
// Zero-length and inverted intervals are rejected.
func ValidInterval(start, end time.Time) bool {
	return start.Before(end)
}

// Conflicts reports whether [s1,e1) collides with [s2,e2). Two events
// conflict when ANY of the following holds:
//
//  1. the intervals truly overlap: s1 < e2 AND e1 > s2
//  2. they start at the same instant: s1 == s2
//  3. they end at the same instant: e1 == e2
//
// Clauses 2 and 3 are kept as independent checks rather than folded into
// clause 1: a zero-length interval sharing a boundary instant would slip
// past the overlap test alone. Adjacent intervals (e1 == s2) do not
// conflict.
func Conflicts(s1, e1, s2, e2 time.Time) bool {
	if s1.Before(e2) && e1.After(s2) {
		return true
	}
	if s1.Equal(s2) {
		return true
	}
	if e1.Equal(e2) {
		return true
	}
	return false
}

// EventPatch carries the optional fields of an event update. Nil fields
// retain the stored values.
type EventPatch struct {
	Title       *string
	Description *string
	StartTime   *time.Time
	EndTime     *time.Time
	Location    *string
}

// Window resolves the effective start/end of an update: patch values where
// set, otherwise the stored ones. Ordering and conflict checks must always
// run against this merged pair, never against the raw patch fields.
func (p EventPatch) Window(storedStart, storedEnd time.Time) (start, end time.Time) {
	start, end = storedStart, storedEnd
	if p.StartTime != nil {
		start = p.StartTime.UTC()
	}
	if p.EndTime != nil {
		end = p.EndTime.UTC()
	}
	return start, end
}
