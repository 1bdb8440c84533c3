// Package grid computes visual placement for occupancy intervals on a
// week/month calendar grid, so overlapping stays never share a stacking row.
package grid

import (
	"sort"

	"github.com/HostSuite455/mind-wander-flow-sub000/internal/interval"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/occupancy"
)

// PositionedInterval carries an interval together with its grid placement.
// ColumnStart/ColumnSpan/Row address a day-column grid; LeftPct/WidthPct
// place the same interval on a single-row percentage timeline.
type PositionedInterval struct {
	Interval occupancy.OccupancyInterval `json:"interval"`

	ColumnStart int `json:"column_start"`
	ColumnSpan  int `json:"column_span"`
	Row         int `json:"row"`

	LeftPct  float64 `json:"left_pct"`
	WidthPct float64 `json:"width_pct"`
}

// Layout assigns grid positions to the intervals intersecting the window.
// Intervals are clamped to the window first, then stacked greedily by start
// date onto the lowest free row. Because ranges are half-open and intervals
// are processed in start order, the row count equals the maximum number of
// intervals sharing any single day in the window.
func Layout(intervals []occupancy.OccupancyInterval, window interval.Range) []PositionedInterval {
	positioned := []PositionedInterval{}
	if !window.Valid() {
		return positioned
	}
	totalDays := interval.DaysIn(window)

	type clamped struct {
		oi  occupancy.OccupancyInterval
		rng interval.Range
	}
	var visible []clamped
	for _, oi := range intervals {
		rng, ok := interval.ClampToWindow(oi.Range(), window)
		if !ok {
			continue
		}
		visible = append(visible, clamped{oi, rng})
	}

	sort.SliceStable(visible, func(i, j int) bool {
		a, b := visible[i], visible[j]
		if !a.rng.Start.Equal(b.rng.Start) {
			return a.rng.Start.Before(b.rng.Start)
		}
		if a.oi.SourceKind.Priority() != b.oi.SourceKind.Priority() {
			return a.oi.SourceKind.Priority() < b.oi.SourceKind.Priority()
		}
		// Longer spans first within a day keeps stacks visually stable.
		return a.rng.End.After(b.rng.End)
	})

	// rowEnds[r] is the exclusive end of the last interval placed on row r.
	// A row is free for an interval starting at or after that end.
	var rowEnds []interval.Range
	for _, c := range visible {
		row := -1
		for r := range rowEnds {
			if !c.rng.Start.Before(rowEnds[r].End) {
				row = r
				break
			}
		}
		if row == -1 {
			row = len(rowEnds)
			rowEnds = append(rowEnds, c.rng)
		}
		rowEnds[row] = c.rng

		colStart := interval.DayOffset(c.rng.Start, window.Start)
		colSpan := interval.Nights(c.rng)

		positioned = append(positioned, PositionedInterval{
			Interval:    c.oi,
			ColumnStart: colStart,
			ColumnSpan:  colSpan,
			Row:         row,
			LeftPct:     float64(colStart) / float64(totalDays) * 100,
			WidthPct:    float64(colSpan) / float64(totalDays) * 100,
		})
	}

	return positioned
}

// RowCount returns the number of stacking rows a layout uses.
func RowCount(positioned []PositionedInterval) int {
	max := 0
	for _, p := range positioned {
		if p.Row+1 > max {
			max = p.Row + 1
		}
	}
	return max
}
