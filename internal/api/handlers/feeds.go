package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/HostSuite455/mind-wander-flow-sub000/internal/api/middleware"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/calendar"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/storage"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/storage/models"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/websocket"
)

// FeedRequest is the create/update body for a feed subscription.
type FeedRequest struct {
	PropertyID      string `json:"property_id"`
	Name            string `json:"name"`
	Channel         string `json:"channel"`
	URL             string `json:"url"`
	SyncIntervalMin int    `json:"sync_interval_min"`
	Enabled         bool   `json:"enabled"`
}

// ListFeeds returns all feed subscriptions, optionally for one property.
func ListFeeds(repo *storage.FeedRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			feeds []models.FeedSource
			err   error
		)
		if propertyID := r.URL.Query().Get("property"); propertyID != "" {
			feeds, err = repo.ListByProperty(r.Context(), propertyID)
		} else {
			feeds, err = repo.List(r.Context())
		}
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query feeds")
			return
		}

		if feeds == nil {
			feeds = []models.FeedSource{}
		}
		writeJSON(w, http.StatusOK, feeds)
	}
}

// CreateFeed adds a new feed subscription and schedules it.
func CreateFeed(repo *storage.FeedRepository, propertyRepo *storage.PropertyRepository, scheduler *calendar.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req FeedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if req.Name == "" || req.URL == "" || req.PropertyID == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Name, URL and property_id are required")
			return
		}

		property, err := propertyRepo.GetByID(r.Context(), req.PropertyID)
		if err != nil || property == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Property not found")
			return
		}

		if req.SyncIntervalMin < 5 {
			req.SyncIntervalMin = 15
		}

		feed := &models.FeedSource{
			PropertyID:      req.PropertyID,
			Name:            req.Name,
			Channel:         req.Channel,
			URL:             req.URL,
			SyncIntervalMin: req.SyncIntervalMin,
			Enabled:         req.Enabled,
		}
		if err := repo.Create(r.Context(), feed); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create feed")
			return
		}

		if scheduler != nil && feed.Enabled {
			scheduler.ScheduleFeed(*feed)
		}

		writeJSON(w, http.StatusCreated, feed)
	}
}

// GetFeed returns a single feed by ID.
func GetFeed(repo *storage.FeedRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		feed, err := repo.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query feed")
			return
		}
		if feed == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Feed not found")
			return
		}
		writeJSON(w, http.StatusOK, feed)
	}
}

// UpdateFeed updates a feed subscription and reschedules it.
func UpdateFeed(repo *storage.FeedRepository, scheduler *calendar.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		existing, err := repo.GetByID(r.Context(), id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query feed")
			return
		}
		if existing == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Feed not found")
			return
		}

		var req FeedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		existing.Name = req.Name
		existing.Channel = req.Channel
		existing.URL = req.URL
		existing.SyncIntervalMin = req.SyncIntervalMin
		existing.Enabled = req.Enabled

		if err := repo.Update(r.Context(), existing); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update feed")
			return
		}

		if scheduler != nil {
			scheduler.ScheduleFeed(*existing)
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteFeed removes a feed subscription, its stored events and schedule.
func DeleteFeed(repo *storage.FeedRepository, scheduler *calendar.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		if err := repo.Delete(r.Context(), id); err != nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Feed not found")
			return
		}

		if scheduler != nil {
			scheduler.UnscheduleFeed(id)
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// SyncFeed triggers an immediate background sync for one feed.
func SyncFeed(repo *storage.FeedRepository, scheduler *calendar.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		feed, err := repo.GetByID(r.Context(), id)
		if err != nil || feed == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Feed not found")
			return
		}

		scheduler.TriggerSync(id)
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "syncing"})
	}
}

// SyncAllFeeds triggers a refresh of every enabled feed and reports per-feed
// outcomes. One unreachable feed never hides results from the others.
func SyncAllFeeds(synchronizer *calendar.Synchronizer, hub *websocket.Hub) http.HandlerFunc {
	type feedOutcome struct {
		FeedID       string `json:"feed_id"`
		FeedName     string `json:"feed_name"`
		Status       string `json:"status"`
		EventsStored int    `json:"events_stored"`
		Error        string `json:"error,omitempty"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		results, err := synchronizer.SyncAllEnabled(r.Context())
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to list feeds")
			return
		}

		outcomes := make([]feedOutcome, 0, len(results))
		for _, res := range results {
			outcome := feedOutcome{
				FeedID:       res.FeedID,
				FeedName:     res.FeedName,
				Status:       "ok",
				EventsStored: res.EventsStored,
			}
			if res.Err != nil {
				outcome.Status = "error"
				outcome.Error = res.Err.Error()
			}
			outcomes = append(outcomes, outcome)
		}

		if hub != nil {
			broadcaster := websocket.NewEventBroadcaster(hub)
			go func(results []calendar.SyncResult) {
				for _, res := range results {
					if res.Err != nil {
						broadcaster.BroadcastFeedSyncError(res.FeedID, res.FeedName, res.Err)
					} else {
						broadcaster.BroadcastFeedSyncCompleted(res.FeedID, res.FeedName,
							res.EventsFound, res.EventsStored, res.Skipped)
					}
				}
			}(results)
		}

		writeJSON(w, http.StatusOK, outcomes)
	}
}
