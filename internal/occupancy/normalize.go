package occupancy

import (
	"fmt"
	"strings"
	"time"

	"github.com/HostSuite455/mind-wander-flow-sub000/internal/interval"
)

// NormalizationError describes a raw record that could not be converted into
// a valid occupancy interval. Callers skip the record and keep the batch.
type NormalizationError struct {
	SourceKind SourceKind
	Reason     string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalizing %s: %s", e.SourceKind, e.Reason)
}

// RawReservation is a native booking as read from the record store.
type RawReservation struct {
	GuestName   string
	CheckIn     time.Time
	CheckOut    time.Time
	Status      string
	Channel     string
	Price       float64
	Currency    string
	ExternalRef string
}

// RawFeedEvent is one parsed entry of an external calendar feed.
type RawFeedEvent struct {
	UID     string
	Summary string
	Start   time.Time
	End     time.Time
	Channel string
}

// RawBlock is a host-created manual block.
type RawBlock struct {
	BlockType string
	Reason    string
	Start     time.Time
	End       time.Time
}

// Summaries that availability-only feeds use instead of guest details.
var availabilityOnlySummaries = map[string]bool{
	"not available": true,
	"unavailable":   true,
	"blocked":       true,
	"reserved":      true,
	"busy":          true,
}

// NormalizeReservation converts a native reservation into the canonical form.
func NormalizeReservation(propertyID string, r RawReservation) (OccupancyInterval, error) {
	rng, err := normalizeDates(SourceReservation, r.CheckIn, r.CheckOut)
	if err != nil {
		return OccupancyInterval{}, err
	}

	status, err := parseReservationStatus(r.Status)
	if err != nil {
		return OccupancyInterval{}, err
	}

	return OccupancyInterval{
		SourceKind:  SourceReservation,
		PropertyID:  propertyID,
		StartDate:   rng.Start,
		EndDate:     rng.End,
		Status:      status,
		GuestName:   r.GuestName,
		Channel:     r.Channel,
		Price:       r.Price,
		Currency:    r.Currency,
		ExternalUID: r.ExternalRef,
	}, nil
}

// NormalizeExternalEvent converts a parsed feed entry into the canonical
// form. Events without a human-readable title are kept but marked
// LimitedDetail so the UI can warn without failing.
func NormalizeExternalEvent(propertyID string, e RawFeedEvent) (OccupancyInterval, error) {
	rng, err := normalizeDates(SourceExternalEvent, e.Start, e.End)
	if err != nil {
		return OccupancyInterval{}, err
	}

	summary := strings.TrimSpace(e.Summary)
	limited := summary == "" || availabilityOnlySummaries[strings.ToLower(summary)]

	out := OccupancyInterval{
		SourceKind:    SourceExternalEvent,
		PropertyID:    propertyID,
		StartDate:     rng.Start,
		EndDate:       rng.End,
		Status:        StatusConfirmed,
		Channel:       e.Channel,
		ExternalUID:   e.UID,
		LimitedDetail: limited,
	}
	if !limited {
		out.GuestName = summary
	}
	return out, nil
}

// NormalizeBlock converts a manual block into the canonical form, mapping
// its block type to a status and carrying the reason text.
func NormalizeBlock(propertyID string, b RawBlock) (OccupancyInterval, error) {
	rng, err := normalizeDates(SourceManualBlock, b.Start, b.End)
	if err != nil {
		return OccupancyInterval{}, err
	}

	var status Status
	switch strings.ToLower(strings.TrimSpace(b.BlockType)) {
	case "maintenance":
		status = StatusMaintenance
	case "personal":
		status = StatusPersonal
	case "", "unavailable", "block":
		status = StatusUnavailable
	default:
		return OccupancyInterval{}, &NormalizationError{
			SourceKind: SourceManualBlock,
			Reason:     fmt.Sprintf("unknown block type %q", b.BlockType),
		}
	}

	return OccupancyInterval{
		SourceKind: SourceManualBlock,
		PropertyID: propertyID,
		StartDate:  rng.Start,
		EndDate:    rng.End,
		Status:     status,
		Note:       b.Reason,
	}, nil
}

func normalizeDates(kind SourceKind, start, end time.Time) (interval.Range, error) {
	if start.IsZero() || end.IsZero() {
		return interval.Range{}, &NormalizationError{SourceKind: kind, Reason: "missing start or end date"}
	}

	rng := interval.Range{Start: interval.Midnight(start), End: interval.Midnight(end)}
	if !rng.Valid() {
		return interval.Range{}, &NormalizationError{
			SourceKind: kind,
			Reason: fmt.Sprintf("end %s is not after start %s",
				rng.End.Format("2006-01-02"), rng.Start.Format("2006-01-02")),
		}
	}
	return rng, nil
}

func parseReservationStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "confirmed":
		return StatusConfirmed, nil
	case "pending":
		return StatusPending, nil
	case "cancelled", "canceled":
		return StatusCancelled, nil
	default:
		return "", &NormalizationError{
			SourceKind: SourceReservation,
			Reason:     fmt.Sprintf("unknown status %q", s),
		}
	}
}
