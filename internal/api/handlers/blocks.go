package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/HostSuite455/mind-wander-flow-sub000/internal/api/middleware"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/storage"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/storage/models"
)

// BlockRequest is the create body for a manual block.
type BlockRequest struct {
	BlockType string  `json:"block_type"`
	Reason    *string `json:"reason,omitempty"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
}

// ListBlocks returns a property's manual blocks inside the requested window.
func ListBlocks(repo *storage.BlockRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window, err := parseWindow(r)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Invalid from/to date")
			return
		}

		blocks, err := repo.ListInWindow(r.Context(), mux.Vars(r)["id"], window.Start, window.End)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query blocks")
			return
		}

		if blocks == nil {
			blocks = []models.Block{}
		}
		writeJSON(w, http.StatusOK, blocks)
	}
}

// CreateBlock adds a manual block to a property.
func CreateBlock(repo *storage.BlockRepository, propertyRepo *storage.PropertyRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propertyID := mux.Vars(r)["id"]

		property, err := propertyRepo.GetByID(r.Context(), propertyID)
		if err != nil || property == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Property not found")
			return
		}

		var req BlockRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		start, err := parseDate(req.StartDate)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "start_date must be a YYYY-MM-DD date")
			return
		}
		end, err := parseDate(req.EndDate)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "end_date must be a YYYY-MM-DD date")
			return
		}
		if !end.After(start) {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "end_date must be after start_date")
			return
		}

		block := &models.Block{
			PropertyID: propertyID,
			BlockType:  req.BlockType,
			Reason:     req.Reason,
			StartDate:  start,
			EndDate:    end,
		}
		if err := repo.Create(r.Context(), block); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create block")
			return
		}

		writeJSON(w, http.StatusCreated, block)
	}
}

// DeleteBlock removes a manual block.
func DeleteBlock(repo *storage.BlockRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := repo.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Block not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
