package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/HostSuite455/mind-wander-flow-sub000/internal/storage/models"
)

// FeedRepository provides data access for calendar feed subscriptions and
// the normalized events produced by their syncs.
type FeedRepository struct {
	BaseRepository
}

// NewFeedRepository creates a new feed repository.
func NewFeedRepository(db *DB) *FeedRepository {
	return &FeedRepository{BaseRepository: NewBaseRepository(db)}
}

const feedColumns = `id, property_id, name, channel, url, sync_interval_min,
	last_sync_at, sync_status, sync_error, enabled, created_at, updated_at`

// Create inserts a new feed source.
func (r *FeedRepository) Create(ctx context.Context, f *models.FeedSource) error {
	f.ID = GenerateID()
	f.CreatedAt = r.Now()
	f.UpdatedAt = r.Now()
	f.SyncStatus = models.SyncStatusNever
	if f.SyncIntervalMin <= 0 {
		f.SyncIntervalMin = 15
	}

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO feed_sources (
			id, property_id, name, channel, url, sync_interval_min,
			sync_status, enabled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		f.ID, f.PropertyID, f.Name, f.Channel, f.URL, f.SyncIntervalMin,
		f.SyncStatus, f.Enabled, f.CreatedAt, f.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("inserting feed: %w", err)
	}
	return nil
}

// GetByID retrieves a feed by its ID. Returns nil when not found.
func (r *FeedRepository) GetByID(ctx context.Context, id string) (*models.FeedSource, error) {
	f := &models.FeedSource{}
	err := r.DB().QueryRowContext(ctx,
		"SELECT "+feedColumns+" FROM feed_sources WHERE id = ?", id,
	).Scan(
		&f.ID, &f.PropertyID, &f.Name, &f.Channel, &f.URL, &f.SyncIntervalMin,
		&f.LastSyncAt, &f.SyncStatus, &f.SyncError, &f.Enabled, &f.CreatedAt, &f.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying feed: %w", err)
	}
	return f, nil
}

// List retrieves all feed sources.
func (r *FeedRepository) List(ctx context.Context) ([]models.FeedSource, error) {
	return r.list(ctx, "SELECT "+feedColumns+" FROM feed_sources ORDER BY name")
}

// ListByProperty retrieves the feed sources configured for a property.
func (r *FeedRepository) ListByProperty(ctx context.Context, propertyID string) ([]models.FeedSource, error) {
	return r.list(ctx,
		"SELECT "+feedColumns+" FROM feed_sources WHERE property_id = ? ORDER BY name", propertyID)
}

// ListEnabled retrieves all enabled feeds, least recently synced first.
func (r *FeedRepository) ListEnabled(ctx context.Context) ([]models.FeedSource, error) {
	return r.list(ctx,
		"SELECT "+feedColumns+" FROM feed_sources WHERE enabled = 1 ORDER BY last_sync_at ASC NULLS FIRST")
}

func (r *FeedRepository) list(ctx context.Context, query string, args ...any) ([]models.FeedSource, error) {
	rows, err := r.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying feeds: %w", err)
	}
	defer rows.Close()

	var feeds []models.FeedSource
	for rows.Next() {
		var f models.FeedSource
		if err := rows.Scan(
			&f.ID, &f.PropertyID, &f.Name, &f.Channel, &f.URL, &f.SyncIntervalMin,
			&f.LastSyncAt, &f.SyncStatus, &f.SyncError, &f.Enabled, &f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning feed: %w", err)
		}
		feeds = append(feeds, f)
	}
	return feeds, rows.Err()
}

// Update updates an existing feed source.
func (r *FeedRepository) Update(ctx context.Context, f *models.FeedSource) error {
	f.UpdatedAt = r.Now()

	result, err := r.DB().ExecContext(ctx, `
		UPDATE feed_sources SET
			name = ?, channel = ?, url = ?, sync_interval_min = ?, enabled = ?, updated_at = ?
		WHERE id = ?
	`, f.Name, f.Channel, f.URL, f.SyncIntervalMin, f.Enabled, f.UpdatedAt, f.ID)

	if err != nil {
		return fmt.Errorf("updating feed: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("feed not found: %s", f.ID)
	}
	return nil
}

// UpdateSyncStatus records the outcome of a sync attempt. last_sync_at is
// only advanced on success.
func (r *FeedRepository) UpdateSyncStatus(ctx context.Context, id string, status string, syncError *string) error {
	now := r.Now()
	var lastSyncAt *time.Time
	if status == models.SyncStatusOK {
		lastSyncAt = &now
	}

	_, err := r.DB().ExecContext(ctx, `
		UPDATE feed_sources SET
			sync_status = ?, sync_error = ?, last_sync_at = COALESCE(?, last_sync_at), updated_at = ?
		WHERE id = ?
	`, status, syncError, lastSyncAt, now, id)

	if err != nil {
		return fmt.Errorf("updating sync status: %w", err)
	}
	return nil
}

// Delete removes a feed and, via cascade, its stored events.
func (r *FeedRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM feed_sources WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting feed: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("feed not found: %s", id)
	}
	return nil
}

// ReplaceEvents swaps a feed's stored events for the given set inside one
// transaction. Replacing wholesale, keyed by feed identity, is what makes
// re-syncing idempotent: repeated refreshes cannot accumulate duplicates.
func (r *FeedRepository) ReplaceEvents(ctx context.Context, feedID string, events []models.FeedEvent) error {
	return r.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM feed_events WHERE feed_id = ?", feedID); err != nil {
			return fmt.Errorf("clearing feed events: %w", err)
		}

		now := r.Now()
		for i := range events {
			e := &events[i]
			e.ID = GenerateID()
			e.FeedID = feedID
			e.CreatedAt = now

			if _, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO feed_events (
					id, feed_id, property_id, uid, channel, summary, start_date, end_date, limited_detail, created_at
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, e.ID, e.FeedID, e.PropertyID, e.UID, e.Channel, e.Summary, e.StartDate, e.EndDate, e.LimitedDetail, e.CreatedAt); err != nil {
				return fmt.Errorf("inserting feed event: %w", err)
			}
		}
		return nil
	})
}

// ListEventsInWindow retrieves the stored feed events overlapping the
// half-open window [from, to). An empty propertyID lists across all
// properties.
func (r *FeedRepository) ListEventsInWindow(ctx context.Context, propertyID string, from, to time.Time) ([]models.FeedEvent, error) {
	query := `
		SELECT id, feed_id, property_id, uid, channel, summary, start_date, end_date, limited_detail, created_at
		FROM feed_events WHERE start_date < ? AND end_date > ?`
	args := []any{to, from}
	if propertyID != "" {
		query += " AND property_id = ?"
		args = append(args, propertyID)
	}
	query += " ORDER BY start_date"

	rows, err := r.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying feed events: %w", err)
	}
	defer rows.Close()

	var events []models.FeedEvent
	for rows.Next() {
		var e models.FeedEvent
		if err := rows.Scan(&e.ID, &e.FeedID, &e.PropertyID, &e.UID, &e.Channel, &e.Summary,
			&e.StartDate, &e.EndDate, &e.LimitedDetail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning feed event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountEventsByFeed returns the number of stored events for a feed.
func (r *FeedRepository) CountEventsByFeed(ctx context.Context, feedID string) (int, error) {
	var n int
	if err := r.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM feed_events WHERE feed_id = ?", feedID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting feed events: %w", err)
	}
	return n, nil
}
