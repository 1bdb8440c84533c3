package calendar

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/HostSuite455/mind-wander-flow-sub000/internal/interval"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/storage"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/storage/models"
)

type syncFixture struct {
	db       *storage.DB
	props    *storage.PropertyRepository
	feeds    *storage.FeedRepository
	property models.Property
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()

	db, err := storage.NewDB(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	f := &syncFixture{
		db:    db,
		props: storage.NewPropertyRepository(db),
		feeds: storage.NewFeedRepository(db),
	}

	f.property = models.Property{HostID: "host-1", Name: "Test Flat", City: "Milano"}
	if err := f.props.Create(context.Background(), &f.property); err != nil {
		t.Fatalf("creating property: %v", err)
	}
	return f
}

func (f *syncFixture) addFeed(t *testing.T, name, channel, url string) models.FeedSource {
	t.Helper()
	feed := models.FeedSource{
		PropertyID: f.property.ID,
		Name:       name,
		Channel:    channel,
		URL:        url,
		Enabled:    true,
	}
	if err := f.feeds.Create(context.Background(), &feed); err != nil {
		t.Fatalf("creating feed: %v", err)
	}
	return feed
}

func icsDocument(entries ...string) string {
	doc := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//Test//EN\r\n"
	for _, e := range entries {
		doc += e
	}
	return doc + "END:VCALENDAR\r\n"
}

func icsEvent(uid, summary, start, end string) string {
	return fmt.Sprintf("BEGIN:VEVENT\r\nUID:%s\r\nDTSTART;VALUE=DATE:%s\r\nDTEND;VALUE=DATE:%s\r\nSUMMARY:%s\r\nEND:VEVENT\r\n",
		uid, start, end, summary)
}

func serveICS(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSyncFeedStoresEvents(t *testing.T) {
	f := newSyncFixture(t)

	srv := serveICS(t, icsDocument(
		icsEvent("uid-1@test", "Reserved - Rossi", "20240310", "20240315"),
		icsEvent("uid-2@test", "Not available", "20240401", "20240403"),
	))
	feed := f.addFeed(t, "Airbnb", "airbnb", srv.URL)

	s := NewSynchronizer(f.feeds, SynchronizerOptions{})
	result := s.SyncFeed(context.Background(), feed)

	if result.Err != nil {
		t.Fatalf("SyncFeed() error = %v", result.Err)
	}
	if result.EventsFound != 2 || result.EventsStored != 2 || result.Skipped != 0 {
		t.Errorf("found/stored/skipped = %d/%d/%d, want 2/2/0",
			result.EventsFound, result.EventsStored, result.Skipped)
	}

	stored, err := f.feeds.ListEventsInWindow(context.Background(), f.property.ID,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("listing events: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("stored events = %d, want 2", len(stored))
	}
	if !stored[0].StartDate.Equal(date(2024, 3, 10)) {
		t.Errorf("first stored start = %v", stored[0].StartDate)
	}
	if stored[0].LimitedDetail {
		t.Error("titled event marked limited_detail")
	}
	if !stored[1].LimitedDetail {
		t.Error("availability-only event not marked limited_detail")
	}

	updated, err := f.feeds.GetByID(context.Background(), feed.ID)
	if err != nil || updated == nil {
		t.Fatalf("reloading feed: %v", err)
	}
	if updated.SyncStatus != models.SyncStatusOK {
		t.Errorf("SyncStatus = %q, want %q", updated.SyncStatus, models.SyncStatusOK)
	}
	if updated.LastSyncAt == nil {
		t.Error("LastSyncAt not recorded on success")
	}
}

func TestSyncFeedIsIdempotent(t *testing.T) {
	f := newSyncFixture(t)

	srv := serveICS(t, icsDocument(
		icsEvent("uid-1@test", "Reserved", "20240310", "20240315"),
	))
	feed := f.addFeed(t, "Airbnb", "airbnb", srv.URL)

	s := NewSynchronizer(f.feeds, SynchronizerOptions{})
	for i := 0; i < 3; i++ {
		if result := s.SyncFeed(context.Background(), feed); result.Err != nil {
			t.Fatalf("sync %d: %v", i, result.Err)
		}
	}

	n, err := f.feeds.CountEventsByFeed(context.Background(), feed.ID)
	if err != nil {
		t.Fatalf("counting events: %v", err)
	}
	if n != 1 {
		t.Errorf("stored events after 3 syncs = %d, want 1", n)
	}
}

func TestSyncFeedRecordsError(t *testing.T) {
	f := newSyncFixture(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	feed := f.addFeed(t, "Broken", "booking", srv.URL)

	s := NewSynchronizer(f.feeds, SynchronizerOptions{})
	result := s.SyncFeed(context.Background(), feed)

	if result.Err == nil {
		t.Fatal("expected sync error")
	}

	updated, err := f.feeds.GetByID(context.Background(), feed.ID)
	if err != nil || updated == nil {
		t.Fatalf("reloading feed: %v", err)
	}
	if updated.SyncStatus != models.SyncStatusError {
		t.Errorf("SyncStatus = %q, want %q", updated.SyncStatus, models.SyncStatusError)
	}
	if updated.SyncError == nil || *updated.SyncError == "" {
		t.Error("SyncError message not recorded")
	}
	if updated.LastSyncAt != nil {
		t.Error("LastSyncAt advanced on a failed sync")
	}
}

func TestSyncFeedsIsolatesFailures(t *testing.T) {
	f := newSyncFixture(t)

	good1 := serveICS(t, icsDocument(icsEvent("uid-a@test", "Stay A", "20240301", "20240304")))
	good2 := serveICS(t, icsDocument(icsEvent("uid-b@test", "Stay B", "20240310", "20240312")))
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	t.Cleanup(bad.Close)

	feeds := []models.FeedSource{
		f.addFeed(t, "Good 1", "airbnb", good1.URL),
		f.addFeed(t, "Bad", "booking", bad.URL),
		f.addFeed(t, "Good 2", "vrbo", good2.URL),
	}

	s := NewSynchronizer(f.feeds, SynchronizerOptions{Workers: 2})
	results := s.SyncFeeds(context.Background(), feeds)

	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want one result per feed", len(results))
	}

	errCount := 0
	for i, r := range results {
		if r.FeedID != feeds[i].ID {
			t.Errorf("result %d is for feed %s, want input order preserved", i, r.FeedID)
		}
		if r.Err != nil {
			errCount++
		}
	}
	if errCount != 1 {
		t.Errorf("error results = %d, want exactly 1", errCount)
	}
	if results[0].EventsStored != 1 || results[2].EventsStored != 1 {
		t.Error("healthy feeds should have stored their events")
	}
}

func TestSyncSkipsBadEventsNotBadFeeds(t *testing.T) {
	f := newSyncFixture(t)

	// Second event has an inverted range; it must be skipped while the first
	// is stored and the feed still counts as synced.
	srv := serveICS(t, icsDocument(
		icsEvent("uid-1@test", "Fine", "20240310", "20240312"),
		icsEvent("uid-2@test", "Backwards", "20240320", "20240315"),
	))
	feed := f.addFeed(t, "Mixed", "airbnb", srv.URL)

	s := NewSynchronizer(f.feeds, SynchronizerOptions{})
	result := s.SyncFeed(context.Background(), feed)

	if result.Err != nil {
		t.Fatalf("SyncFeed() error = %v", result.Err)
	}
	if result.EventsStored != 1 || result.Skipped != 1 {
		t.Errorf("stored/skipped = %d/%d, want 1/1", result.EventsStored, result.Skipped)
	}

	updated, _ := f.feeds.GetByID(context.Background(), feed.ID)
	if updated.SyncStatus != models.SyncStatusOK {
		t.Errorf("SyncStatus = %q, want ok despite skipped record", updated.SyncStatus)
	}
}

func TestSyncThenBuildView(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	srv := serveICS(t, icsDocument(
		icsEvent("uid-x@ota-x.com", "Reserved", "20240312", "20240314"),
	))
	feed := f.addFeed(t, "OTA-X", "ota-x", srv.URL)

	reservations := storage.NewReservationRepository(f.db)
	blocks := storage.NewBlockRepository(f.db)
	res := models.Reservation{
		PropertyID: f.property.ID,
		GuestName:  "Mario Rossi",
		CheckIn:    date(2024, 3, 10),
		CheckOut:   date(2024, 3, 15),
		Status:     models.ReservationStatusConfirmed,
		Channel:    "direct",
		Price:      850,
		Currency:   "EUR",
	}
	if err := reservations.Create(ctx, &res); err != nil {
		t.Fatalf("creating reservation: %v", err)
	}

	s := NewSynchronizer(f.feeds, SynchronizerOptions{})
	if result := s.SyncFeed(ctx, feed); result.Err != nil {
		t.Fatalf("SyncFeed() error = %v", result.Err)
	}

	views := NewViewService(f.props, reservations, blocks, f.feeds)
	window := interval.Range{Start: date(2024, 3, 1), End: date(2024, 4, 1)}
	view, err := views.BuildView(ctx, f.property.ID, window)
	if err != nil {
		t.Fatalf("BuildView() error = %v", err)
	}

	if len(view.Intervals) != 2 {
		t.Fatalf("len(Intervals) = %d, want 2", len(view.Intervals))
	}
	if len(view.Conflicts) != 1 {
		t.Fatalf("len(Conflicts) = %d, want 1", len(view.Conflicts))
	}
	if view.Stats.BookedNights != 5 {
		t.Errorf("BookedNights = %d, want 5", view.Stats.BookedNights)
	}

	// A second sync must not change the aggregated outcome.
	if result := s.SyncFeed(ctx, feed); result.Err != nil {
		t.Fatalf("re-sync error = %v", result.Err)
	}
	again, err := views.BuildView(ctx, f.property.ID, window)
	if err != nil {
		t.Fatalf("BuildView() after re-sync error = %v", err)
	}
	if len(again.Intervals) != len(view.Intervals) || len(again.Conflicts) != len(view.Conflicts) {
		t.Error("re-sync changed the aggregated view")
	}
}
