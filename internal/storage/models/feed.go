package models

import "time"

// FeedSource is one external calendar subscription: an iCal URL published by
// an OTA or channel manager for a single property.
type FeedSource struct {
	ID              string     `json:"id"`
	PropertyID      string     `json:"property_id"`
	Name            string     `json:"name"`
	Channel         string     `json:"channel"`
	URL             string     `json:"url"`
	SyncIntervalMin int        `json:"sync_interval_min"`
	LastSyncAt      *time.Time `json:"last_sync_at,omitempty"`
	SyncStatus      string     `json:"sync_status"`
	SyncError       *string    `json:"sync_error,omitempty"`
	Enabled         bool       `json:"enabled"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Feed sync status constants
const (
	SyncStatusNever = "never"
	SyncStatusOK    = "ok"
	SyncStatusError = "error"
)

// FeedEvent is a normalized event stored from the latest sync of a feed.
// Each sync replaces the feed's events wholesale, keyed by feed identity,
// so repeated refreshes never accumulate duplicates.
type FeedEvent struct {
	ID            string    `json:"id"`
	FeedID        string    `json:"feed_id"`
	PropertyID    string    `json:"property_id"`
	UID           string    `json:"uid"`
	Channel       string    `json:"channel,omitempty"`
	Summary       string    `json:"summary,omitempty"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	LimitedDetail bool      `json:"limited_detail"`
	CreatedAt     time.Time `json:"created_at"`
}
