// Package interval provides pure date-range math for the availability engine.
// All ranges are half-open [Start, End): the checkout day is not an occupied
// night, so a checkout and a check-in on the same day do not overlap.
package interval

import "time"

// Range is a half-open date range. Start and End are expected to be
// midnight-normalized UTC times; use Day or Midnight to construct them.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Day returns the midnight UTC time for the given calendar date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Midnight truncates a time to midnight UTC of the same calendar date.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Valid reports whether the range covers at least one night.
func (r Range) Valid() bool {
	return r.Start.Before(r.End)
}

// Contains reports whether the given day falls inside the range.
func (r Range) Contains(day time.Time) bool {
	return !day.Before(r.Start) && day.Before(r.End)
}

// Overlaps reports whether two half-open ranges share at least one night.
func Overlaps(a, b Range) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Intersection returns the overlapping portion of two ranges. The second
// return value is false when the ranges are disjoint.
func Intersection(a, b Range) (Range, bool) {
	if !Overlaps(a, b) {
		return Range{}, false
	}
	out := a
	if b.Start.After(out.Start) {
		out.Start = b.Start
	}
	if b.End.Before(out.End) {
		out.End = b.End
	}
	return out, true
}

// Nights returns the number of whole nights covered by the range.
// A valid range always has at least one.
func Nights(r Range) int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// DayOffset returns the number of whole days between windowStart and date.
// Negative when date precedes the window. Used for grid column mapping.
func DayOffset(date, windowStart time.Time) int {
	return int(date.Sub(windowStart).Hours() / 24)
}

// DaysIn returns the number of day cells in a rendering window.
func DaysIn(window Range) int {
	return Nights(window)
}

// ClampToWindow returns the portion of r visible inside the rendering
// window, or false if the two are disjoint. Multi-week stays clamp to the
// visible month or week without losing their interior nights.
func ClampToWindow(r, window Range) (Range, bool) {
	return Intersection(r, window)
}
