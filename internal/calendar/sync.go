package calendar

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/HostSuite455/mind-wander-flow-sub000/internal/interval"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/occupancy"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/storage"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/storage/models"
)

// SyncResult is the outcome of one synchronization run over one feed. A
// failed fetch or parse is carried here as data; it never propagates as a
// panic or error past the synchronizer boundary.
type SyncResult struct {
	FeedID     string    `json:"feed_id"`
	FeedName   string    `json:"feed_name"`
	PropertyID string    `json:"property_id"`
	Channel    string    `json:"channel"`
	SyncedAt   time.Time `json:"synced_at"`

	EventsFound  int `json:"events_found"`
	EventsStored int `json:"events_stored"`
	Skipped      int `json:"skipped"`

	Intervals []occupancy.OccupancyInterval `json:"-"`
	Err       error                         `json:"-"`
}

// SynchronizerOptions configures a Synchronizer.
type SynchronizerOptions struct {
	// Workers bounds how many feeds are fetched at the same time.
	Workers int
	// FetchTimeout is the per-feed fetch deadline. A timed-out feed is an
	// error result for that feed only.
	FetchTimeout time.Duration
	// HorizonDays bounds recurrence expansion into the future.
	HorizonDays int
}

// Synchronizer runs the per-feed sync pipeline: fetch, parse, normalize,
// persist, record status. Feeds are independent; a failure in one never
// aborts the others.
type Synchronizer struct {
	feedRepo     *storage.FeedRepository
	parser       *Parser
	workers      int
	fetchTimeout time.Duration
	horizonDays  int
}

// NewSynchronizer creates a synchronizer over the given feed repository.
func NewSynchronizer(feedRepo *storage.FeedRepository, opts SynchronizerOptions) *Synchronizer {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	if opts.HorizonDays <= 0 {
		opts.HorizonDays = 365
	}

	return &Synchronizer{
		feedRepo:     feedRepo,
		parser:       NewParser(&http.Client{Timeout: opts.FetchTimeout}),
		workers:      opts.Workers,
		fetchTimeout: opts.FetchTimeout,
		horizonDays:  opts.HorizonDays,
	}
}

// SyncFeed synchronizes a single feed and records its status. All failures,
// including panics from a misbehaving payload, are converted into the
// returned result.
func (s *Synchronizer) SyncFeed(ctx context.Context, feed models.FeedSource) (result SyncResult) {
	result = SyncResult{
		FeedID:     feed.ID,
		FeedName:   feed.Name,
		PropertyID: feed.PropertyID,
		Channel:    feed.Channel,
		SyncedAt:   time.Now().UTC(),
	}

	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("feed sync panicked: %v", r)
		}
		if result.Err != nil {
			errMsg := result.Err.Error()
			if err := s.feedRepo.UpdateSyncStatus(context.WithoutCancel(ctx), feed.ID, models.SyncStatusError, &errMsg); err != nil {
				log.Printf("Failed to record sync error for feed %s: %v", feed.ID, err)
			}
		}
	}()

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	events, err := s.parser.FetchAndParse(fetchCtx, feed.URL, s.horizon())
	if err != nil {
		result.Err = err
		return result
	}
	result.EventsFound = len(events)

	stored := make([]models.FeedEvent, 0, len(events))
	for _, ev := range events {
		oi, err := occupancy.NormalizeExternalEvent(feed.PropertyID, occupancy.RawFeedEvent{
			UID:     ev.UID,
			Summary: ev.Summary,
			Start:   ev.Start,
			End:     ev.End,
			Channel: feed.Channel,
		})
		if err != nil {
			// Bad record, not a bad feed: skip it with a warning.
			log.Printf("Skipping event %s from feed %s: %v", ev.UID, feed.ID, err)
			result.Skipped++
			continue
		}

		result.Intervals = append(result.Intervals, oi)
		stored = append(stored, models.FeedEvent{
			PropertyID:    feed.PropertyID,
			UID:           oi.ExternalUID,
			Channel:       feed.Channel,
			Summary:       oi.GuestName,
			StartDate:     oi.StartDate,
			EndDate:       oi.EndDate,
			LimitedDetail: oi.LimitedDetail,
		})
	}

	if err := s.feedRepo.ReplaceEvents(ctx, feed.ID, stored); err != nil {
		result.Err = fmt.Errorf("storing feed events: %w", err)
		return result
	}
	result.EventsStored = len(stored)

	if err := s.feedRepo.UpdateSyncStatus(ctx, feed.ID, models.SyncStatusOK, nil); err != nil {
		log.Printf("Failed to record sync success for feed %s: %v", feed.ID, err)
	}

	return result
}

// SyncFeeds synchronizes the given feeds with bounded parallelism, returning
// exactly one result per feed in input order. One unreachable feed yields one
// error result and leaves the others untouched. Cancelling the context
// abandons feeds not yet started; completed results remain valid.
func (s *Synchronizer) SyncFeeds(ctx context.Context, feeds []models.FeedSource) []SyncResult {
	results := make([]SyncResult, len(feeds))
	if len(feeds) == 0 {
		return results
	}

	workers := s.workers
	if workers > len(feeds) {
		workers = len(feeds)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.SyncFeed(ctx, feeds[i])
			}
		}()
	}

	for i := range feeds {
		select {
		case jobs <- i:
		case <-ctx.Done():
			results[i] = SyncResult{
				FeedID:     feeds[i].ID,
				FeedName:   feeds[i].Name,
				PropertyID: feeds[i].PropertyID,
				Channel:    feeds[i].Channel,
				SyncedAt:   time.Now().UTC(),
				Err:        ctx.Err(),
			}
		}
	}
	close(jobs)
	wg.Wait()

	return results
}

// SyncAllEnabled synchronizes every enabled feed.
func (s *Synchronizer) SyncAllEnabled(ctx context.Context) ([]SyncResult, error) {
	feeds, err := s.feedRepo.ListEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing enabled feeds: %w", err)
	}
	return s.SyncFeeds(ctx, feeds), nil
}

// SyncProperty synchronizes the enabled feeds of one property.
func (s *Synchronizer) SyncProperty(ctx context.Context, propertyID string) ([]SyncResult, error) {
	feeds, err := s.feedRepo.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("listing property feeds: %w", err)
	}

	enabled := feeds[:0]
	for _, f := range feeds {
		if f.Enabled {
			enabled = append(enabled, f)
		}
	}
	return s.SyncFeeds(ctx, enabled), nil
}

// horizon is the expansion window for recurring events: six months back to
// HorizonDays forward of today.
func (s *Synchronizer) horizon() interval.Range {
	today := interval.Midnight(time.Now())
	return interval.Range{
		Start: today.AddDate(0, -6, 0),
		End:   today.AddDate(0, 0, s.horizonDays),
	}
}
