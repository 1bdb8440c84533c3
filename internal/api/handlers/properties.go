package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/HostSuite455/mind-wander-flow-sub000/internal/api/middleware"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/storage"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/storage/models"
)

// PropertyRequest is the create/update body for a property.
type PropertyRequest struct {
	HostID  string `json:"host_id"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Address string `json:"address"`
}

// ListProperties returns all properties, optionally filtered by host.
func ListProperties(repo *storage.PropertyRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			properties []models.Property
			err        error
		)
		if hostID := r.URL.Query().Get("host"); hostID != "" {
			properties, err = repo.ListByHost(r.Context(), hostID)
		} else {
			properties, err = repo.List(r.Context())
		}
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query properties")
			return
		}

		if properties == nil {
			properties = []models.Property{}
		}
		writeJSON(w, http.StatusOK, properties)
	}
}

// CreateProperty adds a new property.
func CreateProperty(repo *storage.PropertyRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PropertyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if req.Name == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Name is required")
			return
		}

		property := &models.Property{
			HostID:  req.HostID,
			Name:    req.Name,
			City:    req.City,
			Address: req.Address,
		}
		if err := repo.Create(r.Context(), property); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create property")
			return
		}

		writeJSON(w, http.StatusCreated, property)
	}
}

// GetProperty returns a single property by ID.
func GetProperty(repo *storage.PropertyRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		property, err := repo.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query property")
			return
		}
		if property == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Property not found")
			return
		}
		writeJSON(w, http.StatusOK, property)
	}
}

// UpdateProperty updates an existing property.
func UpdateProperty(repo *storage.PropertyRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		var req PropertyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		property := &models.Property{
			ID:      id,
			HostID:  req.HostID,
			Name:    req.Name,
			City:    req.City,
			Address: req.Address,
		}
		if err := repo.Update(r.Context(), property); err != nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Property not found")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteProperty removes a property and its dependent records.
func DeleteProperty(repo *storage.PropertyRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := repo.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Property not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
