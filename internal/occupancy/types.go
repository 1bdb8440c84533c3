// Package occupancy contains the canonical occupancy model and the pure
// aggregation engine that merges reservations, synced feed events and manual
// blocks into a single conflict-aware timeline per property.
package occupancy

import (
	"time"

	"github.com/HostSuite455/mind-wander-flow-sub000/internal/interval"
)

// SourceKind identifies where an occupancy interval originated.
type SourceKind string

const (
	SourceReservation   SourceKind = "reservation"
	SourceExternalEvent SourceKind = "external_event"
	SourceManualBlock   SourceKind = "manual_block"
)

// Priority orders source kinds by authority: a native reservation is the
// record of truth, an echoed feed event second, a manual block last. Lower
// value sorts first.
func (k SourceKind) Priority() int {
	switch k {
	case SourceReservation:
		return 0
	case SourceExternalEvent:
		return 1
	case SourceManualBlock:
		return 2
	default:
		return 3
	}
}

// Status is the lifecycle or block state of an occupancy interval.
type Status string

const (
	StatusConfirmed   Status = "confirmed"
	StatusPending     Status = "pending"
	StatusCancelled   Status = "cancelled"
	StatusMaintenance Status = "maintenance"
	StatusPersonal    Status = "personal"
	StatusUnavailable Status = "unavailable"
)

// Occupying reports whether an interval in this status actually occupies
// nights. Only cancelled records free their dates.
func (s Status) Occupying() bool {
	return s != StatusCancelled && s != ""
}

// OccupancyInterval is the canonical unit of the engine: one normalized
// record of a property being unavailable for a date range, regardless of
// origin. Dates are half-open [StartDate, EndDate) at midnight UTC.
type OccupancyInterval struct {
	SourceKind SourceKind `json:"source_kind"`
	PropertyID string     `json:"property_id"`
	StartDate  time.Time  `json:"start_date"`
	EndDate    time.Time  `json:"end_date"`
	Status     Status     `json:"status"`

	GuestName   string  `json:"guest_name,omitempty"`
	Channel     string  `json:"channel,omitempty"`
	Price       float64 `json:"price,omitempty"`
	Currency    string  `json:"currency,omitempty"`
	ExternalUID string  `json:"external_uid,omitempty"`
	Note        string  `json:"note,omitempty"`

	// LimitedDetail marks events from availability-only feeds that carry no
	// human-readable title. The UI warns the user instead of failing.
	LimitedDetail bool `json:"limited_detail,omitempty"`
}

// Range returns the interval's date range.
func (oi OccupancyInterval) Range() interval.Range {
	return interval.Range{Start: oi.StartDate, End: oi.EndDate}
}

// Nights returns the number of nights the interval occupies.
func (oi OccupancyInterval) Nights() int {
	return interval.Nights(oi.Range())
}

// Conflict is a detected business-level overlap between two non-cancelled
// intervals from different channels on the same property. Conflicts are
// surfaced for manual resolution, never auto-cancelled.
type Conflict struct {
	PropertyID string            `json:"property_id"`
	A          OccupancyInterval `json:"a"`
	B          OccupancyInterval `json:"b"`
	Overlap    interval.Range    `json:"overlap"`
}

// Stats are the derived statistics of an aggregated window.
type Stats struct {
	OccupancyPct float64        `json:"occupancy_pct"`
	BookedNights int            `json:"booked_nights"`
	Revenue      float64        `json:"revenue"`
	StatusCounts map[Status]int `json:"status_counts"`
}

// AggregatedView is the engine's output for a property scope and window:
// the ordered intervals, the detected conflicts and the derived statistics.
// It is recomputed on every request and never persisted.
type AggregatedView struct {
	Window    interval.Range      `json:"window"`
	Intervals []OccupancyInterval `json:"intervals"`
	Conflicts []Conflict          `json:"conflicts"`
	Stats     Stats               `json:"stats"`

	// Deduplicated counts records dropped as echoes of a more authoritative
	// interval (matching external UID, or a probable mirrored booking).
	Deduplicated int `json:"deduplicated"`
}
