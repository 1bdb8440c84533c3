package calendar

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/HostSuite455/mind-wander-flow-sub000/internal/interval"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/storage"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/storage/models"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/websocket"
)

// Scheduler manages periodic per-feed sync jobs.
type Scheduler struct {
	cron         *cron.Cron
	synchronizer *Synchronizer
	viewService  *ViewService
	feedRepo     *storage.FeedRepository
	broadcaster  *websocket.EventBroadcaster

	jobs   map[string]cron.EntryID
	jobsMu sync.RWMutex

	defaultInterval time.Duration
	horizonDays     int
}

// NewScheduler creates a feed sync scheduler. The hub may be nil when no
// clients need push updates.
func NewScheduler(
	synchronizer *Synchronizer,
	viewService *ViewService,
	feedRepo *storage.FeedRepository,
	hub *websocket.Hub,
	defaultIntervalMin int,
	horizonDays int,
) *Scheduler {
	if defaultIntervalMin <= 0 {
		defaultIntervalMin = 15
	}
	if horizonDays <= 0 {
		horizonDays = 365
	}

	var broadcaster *websocket.EventBroadcaster
	if hub != nil {
		broadcaster = websocket.NewEventBroadcaster(hub)
	}

	return &Scheduler{
		cron:            cron.New(),
		synchronizer:    synchronizer,
		viewService:     viewService,
		feedRepo:        feedRepo,
		broadcaster:     broadcaster,
		jobs:            make(map[string]cron.EntryID),
		defaultInterval: time.Duration(defaultIntervalMin) * time.Minute,
		horizonDays:     horizonDays,
	}
}

// Start loads all enabled feeds, schedules them and begins the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	log.Println("Starting feed sync scheduler...")

	feeds, err := s.feedRepo.ListEnabled(ctx)
	if err != nil {
		return err
	}

	for _, feed := range feeds {
		s.ScheduleFeed(feed)
	}

	// Catch feeds added or modified outside the API notifications.
	s.cron.AddFunc("@every 5m", func() {
		s.refreshSchedules(context.Background())
	})

	s.cron.Start()
	log.Printf("Feed scheduler started with %d feeds", len(feeds))
	return nil
}

// Stop gracefully shuts down the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	log.Println("Stopping feed sync scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Feed scheduler stopped")
}

// ScheduleFeed adds or updates a feed's sync schedule.
func (s *Scheduler) ScheduleFeed(feed models.FeedSource) {
	if !feed.Enabled {
		s.UnscheduleFeed(feed.ID)
		return
	}

	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	if existingID, exists := s.jobs[feed.ID]; exists {
		s.cron.Remove(existingID)
		delete(s.jobs, feed.ID)
	}

	spec := minutesToCronSpec(feed.SyncIntervalMin, s.defaultInterval)
	feedID := feed.ID
	entryID, err := s.cron.AddFunc(spec, func() {
		s.syncFeed(feedID)
	})
	if err != nil {
		log.Printf("Failed to schedule feed %s: %v", feed.ID, err)
		return
	}

	s.jobs[feed.ID] = entryID
	log.Printf("Scheduled feed %s (%s) every %d minutes", feed.ID, feed.Name, feed.SyncIntervalMin)
}

// UnscheduleFeed removes a feed from the sync schedule.
func (s *Scheduler) UnscheduleFeed(feedID string) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	if entryID, exists := s.jobs[feedID]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, feedID)
		log.Printf("Unscheduled feed %s", feedID)
	}
}

// TriggerSync runs an immediate sync for a feed in the background.
func (s *Scheduler) TriggerSync(feedID string) {
	go s.syncFeed(feedID)
}

// syncFeed performs one sync run and pushes the outcome to clients.
func (s *Scheduler) syncFeed(feedID string) {
	ctx := context.Background()

	feed, err := s.feedRepo.GetByID(ctx, feedID)
	if err != nil || feed == nil {
		log.Printf("Feed not found for sync: %s", feedID)
		return
	}

	result := s.synchronizer.SyncFeed(ctx, *feed)
	if result.Err != nil {
		log.Printf("Feed sync failed for %s (%s): %v", feed.ID, feed.Name, result.Err)
		if s.broadcaster != nil {
			s.broadcaster.BroadcastFeedSyncError(feed.ID, feed.Name, result.Err)
		}
		return
	}

	log.Printf("Feed sync completed for %s (%s): %d events, %d stored, %d skipped",
		feed.ID, feed.Name, result.EventsFound, result.EventsStored, result.Skipped)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastFeedSyncCompleted(result.FeedID, result.FeedName,
			result.EventsFound, result.EventsStored, result.Skipped)
	}

	s.reportConflicts(ctx, feed.PropertyID)
}

// reportConflicts re-aggregates the feed's property over the sync horizon
// and pushes any detected cross-channel conflicts for manual resolution.
func (s *Scheduler) reportConflicts(ctx context.Context, propertyID string) {
	if s.broadcaster == nil || s.viewService == nil {
		return
	}

	today := interval.Midnight(time.Now())
	window := interval.Range{Start: today, End: today.AddDate(0, 0, s.horizonDays)}

	view, err := s.viewService.BuildView(ctx, propertyID, window)
	if err != nil {
		log.Printf("Failed to check conflicts for property %s: %v", propertyID, err)
		return
	}

	for _, c := range view.Conflicts {
		s.broadcaster.BroadcastConflictDetected(
			c.PropertyID,
			string(c.A.SourceKind), c.A.Channel,
			string(c.B.SourceKind), c.B.Channel,
			c.Overlap.Start, c.Overlap.End,
		)
	}
}

// refreshSchedules reconciles cron jobs with the feeds table.
func (s *Scheduler) refreshSchedules(ctx context.Context) {
	feeds, err := s.feedRepo.ListEnabled(ctx)
	if err != nil {
		log.Printf("Failed to refresh feed schedules: %v", err)
		return
	}

	currentIDs := make(map[string]bool)
	for _, feed := range feeds {
		currentIDs[feed.ID] = true
		s.ScheduleFeed(feed)
	}

	s.jobsMu.Lock()
	for feedID := range s.jobs {
		if !currentIDs[feedID] {
			s.cron.Remove(s.jobs[feedID])
			delete(s.jobs, feedID)
			log.Printf("Removed schedule for feed %s (no longer enabled)", feedID)
		}
	}
	s.jobsMu.Unlock()
}

// ScheduledFeeds returns the IDs of currently scheduled feeds.
func (s *Scheduler) ScheduledFeeds() []string {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	ids := make([]string, 0, len(s.jobs))
	for id := range s.jobs {
		ids = append(ids, id)
	}
	return ids
}

// NextRun returns the next scheduled run time for a feed, if any.
func (s *Scheduler) NextRun(feedID string) *time.Time {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	if entryID, exists := s.jobs[feedID]; exists {
		entry := s.cron.Entry(entryID)
		if !entry.Next.IsZero() {
			return &entry.Next
		}
	}
	return nil
}

func minutesToCronSpec(minutes int, fallback time.Duration) string {
	duration := time.Duration(minutes) * time.Minute
	if duration < time.Minute {
		duration = fallback
	}
	return "@every " + duration.String()
}
