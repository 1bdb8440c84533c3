package occupancy

import (
	"testing"
)

func sampleView() AggregatedView {
	return AggregatedView{
		Intervals: []OccupancyInterval{
			reservation("prop-1", "Mario Rossi", "airbnb", date(2024, 3, 1), date(2024, 3, 5), 400),
			reservation("prop-1", "Anna Bianchi", "booking", date(2024, 3, 8), date(2024, 3, 10), 250),
			reservation("prop-2", "John Smith", "direct", date(2024, 3, 3), date(2024, 3, 6), 600),
			block("prop-1", StatusMaintenance, date(2024, 3, 20), date(2024, 3, 22)),
		},
	}
}

func TestFilterZeroValuePassesEverything(t *testing.T) {
	view := sampleView()
	got := Filter{}.Apply(view)
	if len(got) != len(view.Intervals) {
		t.Errorf("len = %d, want %d", len(got), len(view.Intervals))
	}
}

func TestFilterByStatusAndChannel(t *testing.T) {
	view := sampleView()

	got := Filter{Statuses: []Status{StatusMaintenance}}.Apply(view)
	if len(got) != 1 || got[0].Status != StatusMaintenance {
		t.Errorf("status filter returned %d intervals", len(got))
	}

	got = Filter{Channels: []string{"Airbnb", "booking"}}.Apply(view)
	if len(got) != 2 {
		t.Errorf("channel filter returned %d intervals, want 2 (case-insensitive)", len(got))
	}
}

func TestFilterBySearchAndPrice(t *testing.T) {
	view := sampleView()

	got := Filter{Search: "rossi"}.Apply(view)
	if len(got) != 1 || got[0].GuestName != "Mario Rossi" {
		t.Errorf("search filter returned %d intervals", len(got))
	}

	min, max := 300.0, 650.0
	got = Filter{MinPrice: &min, MaxPrice: &max}.Apply(view)
	if len(got) != 2 {
		t.Errorf("price filter returned %d intervals, want 2", len(got))
	}
	for _, oi := range got {
		if oi.Price < min || oi.Price > max {
			t.Errorf("price %v outside [%v, %v]", oi.Price, min, max)
		}
	}
}

func TestFilterByDateRange(t *testing.T) {
	view := sampleView()

	got := Filter{From: date(2024, 3, 6), To: date(2024, 3, 15)}.Apply(view)
	if len(got) != 1 || got[0].GuestName != "Anna Bianchi" {
		t.Errorf("date filter returned %d intervals", len(got))
	}

	// An interval ending exactly at From does not intersect it.
	got = Filter{From: date(2024, 3, 5)}.Apply(view)
	for _, oi := range got {
		if oi.GuestName == "Mario Rossi" {
			t.Error("interval ending at From must be excluded")
		}
	}
}

func TestFilterSorting(t *testing.T) {
	view := sampleView()

	got := Filter{SortBy: SortByPrice}.Apply(view)
	for i := 1; i < len(got); i++ {
		if got[i].Price < got[i-1].Price {
			t.Errorf("prices not ascending at index %d: %v < %v", i, got[i].Price, got[i-1].Price)
		}
	}

	got = Filter{SortBy: SortByPrice, Descending: true}.Apply(view)
	for i := 1; i < len(got); i++ {
		if got[i].Price > got[i-1].Price {
			t.Errorf("prices not descending at index %d", i)
		}
	}

	got = Filter{SortBy: SortByGuest}.Apply(view)
	if got[0].GuestName != "" {
		t.Errorf("first by guest = %q, want the unnamed block first", got[0].GuestName)
	}
}

func TestFilterDoesNotMutateView(t *testing.T) {
	view := sampleView()
	first := view.Intervals[0].GuestName

	Filter{SortBy: SortByPrice, Descending: true}.Apply(view)

	if view.Intervals[0].GuestName != first {
		t.Error("Apply reordered the view's own slice")
	}
}
