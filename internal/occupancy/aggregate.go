package occupancy

import (
	"sort"

	"github.com/HostSuite455/mind-wander-flow-sub000/internal/interval"
)

// Request describes one aggregation: a property scope and a date window.
// An empty PropertyID aggregates across all properties present in the input.
type Request struct {
	PropertyID string
	Window     interval.Range

	// PropertyCount overrides the number of properties the occupancy rate is
	// computed against. When zero it is derived from the scope: one for a
	// single property, otherwise the number of distinct properties seen.
	PropertyCount int
}

// Aggregate merges normalized intervals into a conflict-aware view of the
// requested window. It is a pure function: intervals are recomputed on every
// request and conflicts are never stored.
func Aggregate(req Request, intervals []OccupancyInterval) AggregatedView {
	view := AggregatedView{
		Window:    req.Window,
		Intervals: []OccupancyInterval{},
		Conflicts: []Conflict{},
		Stats:     Stats{StatusCounts: map[Status]int{}},
	}
	if !req.Window.Valid() {
		// Malformed windows are caller bugs; produce an empty view rather
		// than guessing at a range.
		return view
	}

	var visible []OccupancyInterval
	for _, oi := range intervals {
		if req.PropertyID != "" && oi.PropertyID != req.PropertyID {
			continue
		}
		if _, ok := interval.ClampToWindow(oi.Range(), req.Window); !ok {
			continue
		}
		visible = append(visible, oi)
	}

	kept, deduped := deduplicate(visible)
	view.Deduplicated = deduped

	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.Before(b.StartDate)
		}
		if a.SourceKind.Priority() != b.SourceKind.Priority() {
			return a.SourceKind.Priority() < b.SourceKind.Priority()
		}
		return a.EndDate.Before(b.EndDate)
	})

	view.Intervals = kept
	view.Conflicts = detectConflicts(kept)
	view.Stats = computeStats(req, kept)
	return view
}

// deduplicate drops records that echo a more authoritative interval on the
// same property, so that a native reservation mirrored by its own OTA feed
// does not produce a false conflict. Matching is by external identifier
// first; a title-less feed event covering exactly the dates of a live
// reservation is treated as a probable mirror of the same stay.
func deduplicate(intervals []OccupancyInterval) (kept []OccupancyInterval, dropped int) {
	type uidKey struct {
		propertyID string
		uid        string
	}

	best := make(map[uidKey]int) // index into intervals of the winner
	drop := make(map[int]bool)

	for i, oi := range intervals {
		if oi.ExternalUID == "" {
			continue
		}
		key := uidKey{oi.PropertyID, oi.ExternalUID}
		prev, seen := best[key]
		if !seen {
			best[key] = i
			continue
		}
		if oi.SourceKind.Priority() < intervals[prev].SourceKind.Priority() {
			drop[prev] = true
			best[key] = i
		} else {
			drop[i] = true
		}
	}

	for i, oi := range intervals {
		if drop[i] || !oi.LimitedDetail || oi.SourceKind != SourceExternalEvent {
			continue
		}
		for j, other := range intervals {
			if i == j || drop[j] {
				continue
			}
			if other.SourceKind == SourceReservation &&
				other.PropertyID == oi.PropertyID &&
				other.Status.Occupying() &&
				other.StartDate.Equal(oi.StartDate) &&
				other.EndDate.Equal(oi.EndDate) {
				drop[i] = true
				break
			}
		}
	}

	for i, oi := range intervals {
		if drop[i] {
			dropped++
			continue
		}
		kept = append(kept, oi)
	}
	return kept, dropped
}

// detectConflicts flags every pair of occupying intervals on the same
// property that overlap while originating from different source kinds or
// channels. Input must already be deduplicated.
func detectConflicts(intervals []OccupancyInterval) []Conflict {
	conflicts := []Conflict{}
	for i := 0; i < len(intervals); i++ {
		a := intervals[i]
		if !a.Status.Occupying() {
			continue
		}
		for j := i + 1; j < len(intervals); j++ {
			b := intervals[j]
			if b.PropertyID != a.PropertyID || !b.Status.Occupying() {
				continue
			}
			if a.SourceKind == b.SourceKind && a.Channel == b.Channel {
				continue
			}
			overlap, ok := interval.Intersection(a.Range(), b.Range())
			if !ok {
				continue
			}
			conflicts = append(conflicts, Conflict{
				PropertyID: a.PropertyID,
				A:          a,
				B:          b,
				Overlap:    overlap,
			})
		}
	}
	return conflicts
}

func computeStats(req Request, intervals []OccupancyInterval) Stats {
	stats := Stats{StatusCounts: map[Status]int{}}

	// Booked nights count each occupied property-night once, so a stay
	// mirrored across channels does not inflate occupancy.
	occupied := make(map[string]map[int]bool)
	properties := make(map[string]bool)

	for _, oi := range intervals {
		stats.StatusCounts[oi.Status]++
		properties[oi.PropertyID] = true

		if oi.Status == StatusConfirmed && oi.StartDate.Compare(req.Window.Start) >= 0 && oi.StartDate.Before(req.Window.End) {
			stats.Revenue += oi.Price
		}

		if !oi.Status.Occupying() {
			continue
		}
		clamped, ok := interval.ClampToWindow(oi.Range(), req.Window)
		if !ok {
			continue
		}
		days := occupied[oi.PropertyID]
		if days == nil {
			days = make(map[int]bool)
			occupied[oi.PropertyID] = days
		}
		first := interval.DayOffset(clamped.Start, req.Window.Start)
		last := first + interval.Nights(clamped)
		for d := first; d < last; d++ {
			days[d] = true
		}
	}

	for _, days := range occupied {
		stats.BookedNights += len(days)
	}

	considered := req.PropertyCount
	if considered <= 0 {
		if req.PropertyID != "" {
			considered = 1
		} else {
			considered = len(properties)
		}
	}
	if considered < 1 {
		considered = 1
	}

	if total := interval.DaysIn(req.Window) * considered; total > 0 {
		stats.OccupancyPct = float64(stats.BookedNights) / float64(total) * 100
	}
	return stats
}
