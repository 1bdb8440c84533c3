package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/HostSuite455/mind-wander-flow-sub000/internal/api/middleware"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/storage"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/storage/models"
)

// ReservationRequest is the create/update body for a native reservation.
// Dates use the YYYY-MM-DD format; check_out is the exclusive checkout day.
type ReservationRequest struct {
	GuestName   string  `json:"guest_name"`
	CheckIn     string  `json:"check_in"`
	CheckOut    string  `json:"check_out"`
	Status      string  `json:"status"`
	Channel     string  `json:"channel"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	ExternalRef *string `json:"external_ref,omitempty"`
}

func (req *ReservationRequest) toModel(propertyID string) (*models.Reservation, string) {
	checkIn, err := parseDate(req.CheckIn)
	if err != nil {
		return nil, "check_in must be a YYYY-MM-DD date"
	}
	checkOut, err := parseDate(req.CheckOut)
	if err != nil {
		return nil, "check_out must be a YYYY-MM-DD date"
	}
	if !checkOut.After(checkIn) {
		return nil, "check_out must be after check_in"
	}

	return &models.Reservation{
		PropertyID:  propertyID,
		GuestName:   req.GuestName,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		Status:      req.Status,
		Channel:     req.Channel,
		Price:       req.Price,
		Currency:    req.Currency,
		ExternalRef: req.ExternalRef,
	}, ""
}

// ListReservations returns a property's reservations inside the requested
// window (defaults to the current month).
func ListReservations(repo *storage.ReservationRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window, err := parseWindow(r)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Invalid from/to date")
			return
		}

		reservations, err := repo.ListInWindow(r.Context(), mux.Vars(r)["id"], window.Start, window.End)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query reservations")
			return
		}

		if reservations == nil {
			reservations = []models.Reservation{}
		}
		writeJSON(w, http.StatusOK, reservations)
	}
}

// CreateReservation adds a native reservation to a property.
func CreateReservation(repo *storage.ReservationRepository, propertyRepo *storage.PropertyRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propertyID := mux.Vars(r)["id"]

		property, err := propertyRepo.GetByID(r.Context(), propertyID)
		if err != nil || property == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Property not found")
			return
		}

		var req ReservationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		reservation, msg := req.toModel(propertyID)
		if msg != "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, msg)
			return
		}

		if err := repo.Create(r.Context(), reservation); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create reservation")
			return
		}

		writeJSON(w, http.StatusCreated, reservation)
	}
}

// UpdateReservation updates an existing reservation.
func UpdateReservation(repo *storage.ReservationRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		existing, err := repo.GetByID(r.Context(), id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query reservation")
			return
		}
		if existing == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Reservation not found")
			return
		}

		var req ReservationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		reservation, msg := req.toModel(existing.PropertyID)
		if msg != "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, msg)
			return
		}
		reservation.ID = id

		if err := repo.Update(r.Context(), reservation); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update reservation")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteReservation removes a reservation.
func DeleteReservation(repo *storage.ReservationRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := repo.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Reservation not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
