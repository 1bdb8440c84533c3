package handlers

import (
	"net/http"

	"github.com/HostSuite455/mind-wander-flow-sub000/internal/calendar"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/storage"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/websocket"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	DBConnected bool   `json:"db_connected"`
}

// HealthCheck returns a handler that performs a health check.
func HealthCheck(db *storage.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbConnected := db.Ping() == nil

		status := "healthy"
		code := http.StatusOK
		if !dbConnected {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}

		writeJSON(w, code, HealthResponse{
			Status:      status,
			DBConnected: dbConnected,
		})
	}
}

// StatusResponse reports the runtime state of the sync subsystem.
type StatusResponse struct {
	ScheduledFeeds int `json:"scheduled_feeds"`
	WSClients      int `json:"ws_clients"`
}

// Status returns a handler reporting scheduler and hub state.
func Status(hub *websocket.Hub, scheduler *calendar.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := StatusResponse{}
		if hub != nil {
			resp.WSClients = hub.ClientCount()
		}
		if scheduler != nil {
			resp.ScheduledFeeds = len(scheduler.ScheduledFeeds())
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
