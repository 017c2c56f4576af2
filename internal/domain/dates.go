package domain

import "time"

// All booking math happens at day granularity: a pickup or return date names a
// whole calendar day, and time-of-day components on incoming values are noise
// from transport encoding. Helpers here normalise to midnight UTC before
// comparing.

// Day truncates t to midnight UTC, discarding the time-of-day component.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from a to b (negative when b
// is before a). Both arguments are truncated to day granularity first.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// RentalDays returns the billable number of days for a [pickup, return] range.
// A same-day rental still bills one day.
func RentalDays(pickup, ret time.Time) int {
	days := DaysBetween(pickup, ret)
	if days < 1 {
		return 1
	}
	return days
}

// Overlaps reports whether the closed day intervals [p1, r1] and [p2, r2]
// share at least one calendar day. Ends are inclusive: a car returned on day X
// is occupied through the end of day X and cannot be picked up again before
// day X+1.
func Overlaps(p1, r1, p2, r2 time.Time) bool {
	return !Day(p1).After(Day(r2)) && !Day(p2).After(Day(r1))
}
