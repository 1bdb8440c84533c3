package grid

import (
	"testing"
	"time"

	"github.com/HostSuite455/mind-wander-flow-sub000/internal/interval"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/occupancy"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func stay(start, end time.Time) occupancy.OccupancyInterval {
	return occupancy.OccupancyInterval{
		SourceKind: occupancy.SourceReservation,
		PropertyID: "prop-1",
		StartDate:  start,
		EndDate:    end,
		Status:     occupancy.StatusConfirmed,
	}
}

func march() interval.Range {
	return interval.Range{Start: date(2024, 3, 1), End: date(2024, 4, 1)}
}

func TestLayoutOverlappingStaysGetDistinctRows(t *testing.T) {
	positioned := Layout([]occupancy.OccupancyInterval{
		stay(date(2024, 3, 10), date(2024, 3, 15)),
		stay(date(2024, 3, 12), date(2024, 3, 14)),
		stay(date(2024, 3, 13), date(2024, 3, 16)),
	}, march())

	if len(positioned) != 3 {
		t.Fatalf("len = %d, want 3", len(positioned))
	}

	// All three share Mar 13, so no two may share a row.
	rows := map[int]bool{}
	for _, p := range positioned {
		if rows[p.Row] {
			t.Errorf("row %d used twice for overlapping intervals", p.Row)
		}
		rows[p.Row] = true
	}
	if got := RowCount(positioned); got != 3 {
		t.Errorf("RowCount = %d, want 3", got)
	}
}

func TestLayoutReusesRowsForDisjointStays(t *testing.T) {
	// Back-to-back stays share a turnover day but not a night; one row is
	// enough for all three.
	positioned := Layout([]occupancy.OccupancyInterval{
		stay(date(2024, 3, 1), date(2024, 3, 5)),
		stay(date(2024, 3, 5), date(2024, 3, 9)),
		stay(date(2024, 3, 9), date(2024, 3, 12)),
	}, march())

	if got := RowCount(positioned); got != 1 {
		t.Errorf("RowCount = %d, want 1", got)
	}
}

func TestLayoutRowCountMatchesMaxOverlap(t *testing.T) {
	// Two pairs overlap but never three at once: two rows must suffice.
	positioned := Layout([]occupancy.OccupancyInterval{
		stay(date(2024, 3, 1), date(2024, 3, 4)),
		stay(date(2024, 3, 3), date(2024, 3, 8)),
		stay(date(2024, 3, 6), date(2024, 3, 10)),
		stay(date(2024, 3, 9), date(2024, 3, 12)),
	}, march())

	if got := RowCount(positioned); got != 2 {
		t.Errorf("RowCount = %d, want 2", got)
	}
}

func TestLayoutColumnsAndPercentages(t *testing.T) {
	positioned := Layout([]occupancy.OccupancyInterval{
		stay(date(2024, 3, 10), date(2024, 3, 15)),
	}, march())

	if len(positioned) != 1 {
		t.Fatalf("len = %d, want 1", len(positioned))
	}

	p := positioned[0]
	if p.ColumnStart != 9 {
		t.Errorf("ColumnStart = %d, want 9", p.ColumnStart)
	}
	if p.ColumnSpan != 5 {
		t.Errorf("ColumnSpan = %d, want 5", p.ColumnSpan)
	}

	wantLeft := 9.0 / 31.0 * 100
	wantWidth := 5.0 / 31.0 * 100
	if diff := p.LeftPct - wantLeft; diff > 0.001 || diff < -0.001 {
		t.Errorf("LeftPct = %v, want %v", p.LeftPct, wantLeft)
	}
	if diff := p.WidthPct - wantWidth; diff > 0.001 || diff < -0.001 {
		t.Errorf("WidthPct = %v, want %v", p.WidthPct, wantWidth)
	}
}

func TestLayoutClampsToWindow(t *testing.T) {
	positioned := Layout([]occupancy.OccupancyInterval{
		stay(date(2024, 2, 25), date(2024, 3, 4)),  // spans window start
		stay(date(2024, 3, 29), date(2024, 4, 10)), // spans window end
		stay(date(2024, 2, 1), date(2024, 2, 10)),  // fully outside
	}, march())

	if len(positioned) != 2 {
		t.Fatalf("len = %d, want 2 (outside interval dropped)", len(positioned))
	}

	for _, p := range positioned {
		if p.ColumnStart < 0 {
			t.Errorf("ColumnStart = %d, want >= 0", p.ColumnStart)
		}
		if p.ColumnStart+p.ColumnSpan > 31 {
			t.Errorf("ColumnStart+ColumnSpan = %d, want <= 31", p.ColumnStart+p.ColumnSpan)
		}
		if p.LeftPct < 0 || p.LeftPct+p.WidthPct > 100.001 {
			t.Errorf("percentages out of range: left %v width %v", p.LeftPct, p.WidthPct)
		}
	}
}

func TestLayoutEmptyAndInvalid(t *testing.T) {
	if got := Layout(nil, march()); len(got) != 0 {
		t.Errorf("nil input: len = %d, want 0", len(got))
	}

	backwards := interval.Range{Start: date(2024, 4, 1), End: date(2024, 3, 1)}
	got := Layout([]occupancy.OccupancyInterval{stay(date(2024, 3, 10), date(2024, 3, 12))}, backwards)
	if len(got) != 0 {
		t.Errorf("invalid window: len = %d, want 0", len(got))
	}
}
