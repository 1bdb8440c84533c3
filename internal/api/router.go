// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/HostSuite455/mind-wander-flow-sub000/internal/api/handlers"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/api/middleware"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/calendar"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/storage"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/websocket"
)

// Services bundles the dependencies the router wires into handlers.
type Services struct {
	DB           *storage.DB
	Hub          *websocket.Hub
	StaticDir    string
	Synchronizer *calendar.Synchronizer
	Scheduler    *calendar.Scheduler
	ViewService  *calendar.ViewService

	Properties   *storage.PropertyRepository
	Reservations *storage.ReservationRepository
	Blocks       *storage.BlockRepository
	Feeds        *storage.FeedRepository
}

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(s Services) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.Logging)
	r.Use(middleware.ErrorRecovery)

	api := r.PathPrefix("/api").Subrouter()

	// Health and status
	api.HandleFunc("/health", handlers.HealthCheck(s.DB)).Methods("GET")
	api.HandleFunc("/status", handlers.Status(s.Hub, s.Scheduler)).Methods("GET")

	// WebSocket
	api.HandleFunc("/ws", handlers.WebSocketUpgrade(s.Hub)).Methods("GET")

	// Properties
	api.HandleFunc("/properties", handlers.ListProperties(s.Properties)).Methods("GET")
	api.HandleFunc("/properties", handlers.CreateProperty(s.Properties)).Methods("POST")
	api.HandleFunc("/properties/{id}", handlers.GetProperty(s.Properties)).Methods("GET")
	api.HandleFunc("/properties/{id}", handlers.UpdateProperty(s.Properties)).Methods("PUT")
	api.HandleFunc("/properties/{id}", handlers.DeleteProperty(s.Properties)).Methods("DELETE")

	// Reservations
	api.HandleFunc("/properties/{id}/reservations", handlers.ListReservations(s.Reservations)).Methods("GET")
	api.HandleFunc("/properties/{id}/reservations", handlers.CreateReservation(s.Reservations, s.Properties)).Methods("POST")
	api.HandleFunc("/reservations/{id}", handlers.UpdateReservation(s.Reservations)).Methods("PUT")
	api.HandleFunc("/reservations/{id}", handlers.DeleteReservation(s.Reservations)).Methods("DELETE")

	// Manual blocks
	api.HandleFunc("/properties/{id}/blocks", handlers.ListBlocks(s.Blocks)).Methods("GET")
	api.HandleFunc("/properties/{id}/blocks", handlers.CreateBlock(s.Blocks, s.Properties)).Methods("POST")
	api.HandleFunc("/blocks/{id}", handlers.DeleteBlock(s.Blocks)).Methods("DELETE")

	// Feed subscriptions
	api.HandleFunc("/feeds", handlers.ListFeeds(s.Feeds)).Methods("GET")
	api.HandleFunc("/feeds", handlers.CreateFeed(s.Feeds, s.Properties, s.Scheduler)).Methods("POST")
	api.HandleFunc("/feeds/sync", handlers.SyncAllFeeds(s.Synchronizer, s.Hub)).Methods("POST")
	api.HandleFunc("/feeds/{id}", handlers.GetFeed(s.Feeds)).Methods("GET")
	api.HandleFunc("/feeds/{id}", handlers.UpdateFeed(s.Feeds, s.Scheduler)).Methods("PUT")
	api.HandleFunc("/feeds/{id}", handlers.DeleteFeed(s.Feeds, s.Scheduler)).Methods("DELETE")
	api.HandleFunc("/feeds/{id}/sync", handlers.SyncFeed(s.Feeds, s.Scheduler)).Methods("POST")

	// Aggregated calendar
	api.HandleFunc("/calendar", handlers.GetCalendar(s.ViewService)).Methods("GET")
	api.HandleFunc("/calendar/layout", handlers.GetCalendarLayout(s.ViewService)).Methods("GET")

	// Serve static frontend files
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.StaticDir)))

	return r
}
