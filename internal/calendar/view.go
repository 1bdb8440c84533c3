package calendar

import (
	"context"
	"fmt"
	"log"

	"github.com/HostSuite455/mind-wander-flow-sub000/internal/interval"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/occupancy"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/storage"
)

// ViewService assembles aggregated calendar views: it loads reservations,
// manual blocks and stored feed events for the requested scope, normalizes
// them and hands them to the aggregation engine.
type ViewService struct {
	propertyRepo    *storage.PropertyRepository
	reservationRepo *storage.ReservationRepository
	blockRepo       *storage.BlockRepository
	feedRepo        *storage.FeedRepository
}

// NewViewService creates a view service over the given repositories.
func NewViewService(
	propertyRepo *storage.PropertyRepository,
	reservationRepo *storage.ReservationRepository,
	blockRepo *storage.BlockRepository,
	feedRepo *storage.FeedRepository,
) *ViewService {
	return &ViewService{
		propertyRepo:    propertyRepo,
		reservationRepo: reservationRepo,
		blockRepo:       blockRepo,
		feedRepo:        feedRepo,
	}
}

// BuildView aggregates all occupancy sources for a property scope and
// window. An empty propertyID aggregates across all properties. Records that
// fail normalization are skipped with a warning, never aborting the view.
func (s *ViewService) BuildView(ctx context.Context, propertyID string, window interval.Range) (occupancy.AggregatedView, error) {
	if !window.Valid() {
		return occupancy.AggregatedView{}, fmt.Errorf("invalid window: start %s not before end %s",
			window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"))
	}

	intervals, err := s.CollectIntervals(ctx, propertyID, window)
	if err != nil {
		return occupancy.AggregatedView{}, err
	}

	req := occupancy.Request{PropertyID: propertyID, Window: window}
	if propertyID == "" {
		count, err := s.propertyRepo.Count(ctx)
		if err != nil {
			return occupancy.AggregatedView{}, fmt.Errorf("counting properties: %w", err)
		}
		req.PropertyCount = count
	}

	return occupancy.Aggregate(req, intervals), nil
}

// CollectIntervals loads and normalizes every occupancy source intersecting
// the window.
func (s *ViewService) CollectIntervals(ctx context.Context, propertyID string, window interval.Range) ([]occupancy.OccupancyInterval, error) {
	var intervals []occupancy.OccupancyInterval

	reservations, err := s.reservationRepo.ListInWindow(ctx, propertyID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("listing reservations: %w", err)
	}
	for _, res := range reservations {
		raw := occupancy.RawReservation{
			GuestName: res.GuestName,
			CheckIn:   res.CheckIn,
			CheckOut:  res.CheckOut,
			Status:    res.Status,
			Channel:   res.Channel,
			Price:     res.Price,
			Currency:  res.Currency,
		}
		if res.ExternalRef != nil {
			raw.ExternalRef = *res.ExternalRef
		}
		oi, err := occupancy.NormalizeReservation(res.PropertyID, raw)
		if err != nil {
			log.Printf("Skipping reservation %s: %v", res.ID, err)
			continue
		}
		intervals = append(intervals, oi)
	}

	blocks, err := s.blockRepo.ListInWindow(ctx, propertyID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("listing blocks: %w", err)
	}
	for _, b := range blocks {
		raw := occupancy.RawBlock{BlockType: b.BlockType, Start: b.StartDate, End: b.EndDate}
		if b.Reason != nil {
			raw.Reason = *b.Reason
		}
		oi, err := occupancy.NormalizeBlock(b.PropertyID, raw)
		if err != nil {
			log.Printf("Skipping block %s: %v", b.ID, err)
			continue
		}
		intervals = append(intervals, oi)
	}

	events, err := s.feedRepo.ListEventsInWindow(ctx, propertyID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("listing feed events: %w", err)
	}
	for _, e := range events {
		oi, err := occupancy.NormalizeExternalEvent(e.PropertyID, occupancy.RawFeedEvent{
			UID:     e.UID,
			Summary: e.Summary,
			Start:   e.StartDate,
			End:     e.EndDate,
			Channel: e.Channel,
		})
		if err != nil {
			log.Printf("Skipping feed event %s: %v", e.ID, err)
			continue
		}
		intervals = append(intervals, oi)
	}

	return intervals, nil
}
