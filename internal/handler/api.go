package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"event-banner/internal/models"
)

// GuestListResponse is the body of GET /api/guests
type GuestListResponse struct {
	Guests      []models.Guest `json:"guests"`
	TotalGuests int            `json:"totalGuests"`
}

// ListGuests returns the roster and the head count
func (h *Handler) ListGuests(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, GuestListResponse{
		Guests:      h.banner.Guests(),
		TotalGuests: h.banner.TotalGuests(),
	})
}

// CreateGuest appends one guest from a JSON body
func (h *Handler) CreateGuest(w http.ResponseWriter, r *http.Request) {
	var guest models.Guest
	if err := json.NewDecoder(r.Body).Decode(&guest); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	saved, err := h.banner.AddGuest(r.Context(), guest)
	if errors.Is(err, models.ErrInvalidGuest) {
		badRequest(w, "name, numberOfGuests >= 1 and a contact value are required")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to add guest")
		internalError(w, "could not save guest")
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

// DeleteGuests clears the roster
func (h *Handler) DeleteGuests(w http.ResponseWriter, r *http.Request) {
	if err := h.banner.ClearAll(r.Context()); err != nil {
		internalError(w, "could not clear guests")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCountdown returns the latest published countdown
func (h *Handler) GetCountdown(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.banner.Countdown())
}
