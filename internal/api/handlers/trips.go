package handlers

import (
	"log"
	"net/http"
	"strconv"

	"nav-tracking-service/internal/api/dto"
	"nav-tracking-service/internal/ports"
)

type TripHandler struct {
	Store ports.TripStore
}

// List returns the most recent trip summaries, newest first.
func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		writeError(w, r, http.StatusServiceUnavailable, "trip log is not configured")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	trips, err := h.Store.Recent(r.Context(), limit)
	if err != nil {
		log.Printf("list trips failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListTripsResponse{Trips: make([]dto.TripSummaryResponse, 0, len(trips))}
	for _, t := range trips {
		res.Trips = append(res.Trips, toTripResponse(t))
	}
	writeJSON(w, r, http.StatusOK, res)
}
