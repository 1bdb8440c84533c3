package occupancy

import (
	"sort"
	"strings"
	"time"
)

// SortKey selects the ordering of filtered results.
type SortKey string

const (
	SortByStartDate SortKey = "start_date"
	SortByEndDate   SortKey = "end_date"
	SortByGuest     SortKey = "guest"
	SortByPrice     SortKey = "price"
	SortByChannel   SortKey = "channel"
)

// Filter narrows an aggregated view for presentation. Empty fields match
// everything; the zero Filter returns the view's intervals unchanged.
type Filter struct {
	PropertyIDs []string
	Statuses    []Status
	Channels    []string
	Search      string
	MinPrice    *float64
	MaxPrice    *float64
	From        time.Time
	To          time.Time
	SortBy      SortKey
	Descending  bool
}

// Apply returns the ordered subset of the view's intervals matched by the
// filter. It is stateless: the same view and filter always yield the same
// result, and the view itself is never mutated.
func (f Filter) Apply(view AggregatedView) []OccupancyInterval {
	out := make([]OccupancyInterval, 0, len(view.Intervals))
	for _, oi := range view.Intervals {
		if f.matches(oi) {
			out = append(out, oi)
		}
	}
	f.sortIntervals(out)
	return out
}

func (f Filter) matches(oi OccupancyInterval) bool {
	if len(f.PropertyIDs) > 0 && !containsString(f.PropertyIDs, oi.PropertyID) {
		return false
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, oi.Status) {
		return false
	}
	if len(f.Channels) > 0 && !containsFold(f.Channels, oi.Channel) {
		return false
	}
	if f.MinPrice != nil && oi.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && oi.Price > *f.MaxPrice {
		return false
	}
	if !f.From.IsZero() && !oi.EndDate.After(f.From) {
		return false
	}
	if !f.To.IsZero() && !oi.StartDate.Before(f.To) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(oi.GuestName), needle) &&
			!strings.Contains(strings.ToLower(oi.Channel), needle) &&
			!strings.Contains(strings.ToLower(oi.ExternalUID), needle) &&
			!strings.Contains(strings.ToLower(oi.Note), needle) {
			return false
		}
	}
	return true
}

func (f Filter) sortIntervals(intervals []OccupancyInterval) {
	less := func(a, b OccupancyInterval) bool {
		switch f.SortBy {
		case SortByEndDate:
			return a.EndDate.Before(b.EndDate)
		case SortByGuest:
			return strings.ToLower(a.GuestName) < strings.ToLower(b.GuestName)
		case SortByPrice:
			return a.Price < b.Price
		case SortByChannel:
			return strings.ToLower(a.Channel) < strings.ToLower(b.Channel)
		default:
			return a.StartDate.Before(b.StartDate)
		}
	}

	sort.SliceStable(intervals, func(i, j int) bool {
		if f.Descending {
			return less(intervals[j], intervals[i])
		}
		return less(intervals[i], intervals[j])
	})
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}

func containsStatus(haystack []Status, needle Status) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
