package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Gizmotronn/where-will-i-meet-you/internal/models"
	"github.com/Gizmotronn/where-will-i-meet-you/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// StopHandler handles transit-stop HTTP requests
type StopHandler struct {
	stopService *services.StopService
}

// NewStopHandler creates a new stop handler
func NewStopHandler(stopService *services.StopService) *StopHandler {
	return &StopHandler{
		stopService: stopService,
	}
}

// CreateStop handles POST /api/v1/stops
func (h *StopHandler) CreateStop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.CreateStopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.stopService.CreateStop(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("name", req.Name).Str("line", req.Line).Msg("Failed to create stop")
		respondError(w, err.Error(), statusFor(err))
		return
	}

	log.Info().
		Str("stop_id", result.ID).
		Str("name", req.Name).
		Str("line", req.Line).
		Str("city", req.City).
		Bool("created", result.Created).
		Msg("Stop create handled")

	respondJSON(w, http.StatusOK, result)
}

// ListStops handles GET /api/v1/stops
func (h *StopHandler) ListStops(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var filter models.StopFilter
	if v := r.URL.Query().Get("type"); v != "" {
		t := models.StopType(v)
		if !t.Valid() {
			respondError(w, "type must be train or tram", http.StatusBadRequest)
			return
		}
		filter.Type = &t
	}
	if v := r.URL.Query().Get("city"); v != "" {
		filter.City = &v
	}
	if v := r.URL.Query().Get("line"); v != "" {
		filter.Line = &v
	}

	stops, err := h.stopService.ListStops(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list stops")
		respondError(w, "Failed to list stops", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, stops)
}

// GetStop handles GET /api/v1/stops/{stop_id}. A missing stop yields a
// JSON null body, not an error.
func (h *StopHandler) GetStop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stopID := chi.URLParam(r, "stop_id")

	stop, err := h.stopService.GetStop(ctx, stopID)
	if err != nil {
		log.Error().Err(err).Str("stop_id", stopID).Msg("Failed to get stop")
		respondError(w, "Failed to get stop", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, stop)
}

// SearchStops handles GET /api/v1/stops/search
func (h *StopHandler) SearchStops(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	term := r.URL.Query().Get("q")

	stops, err := h.stopService.SearchStops(ctx, term)
	if err != nil {
		log.Error().Err(err).Str("term", term).Msg("Failed to search stops")
		respondError(w, "Failed to search stops", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, stops)
}

// GetNearbyStops handles GET /api/v1/stops/{stop_id}/nearby
func (h *StopHandler) GetNearbyStops(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stopID := chi.URLParam(r, "stop_id")

	var maxDistanceKm *float64
	if v := r.URL.Query().Get("max_distance_km"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed < 0 {
			respondError(w, "max_distance_km must be a non-negative number", http.StatusBadRequest)
			return
		}
		maxDistanceKm = &parsed
	}

	stops, err := h.stopService.GetNearbyStops(ctx, stopID, maxDistanceKm)
	if err != nil {
		log.Error().Err(err).Str("stop_id", stopID).Msg("Failed to get nearby stops")
		respondError(w, "Failed to get nearby stops", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, stops)
}

// ClearAllStops handles DELETE /api/v1/stops. Operator-only maintenance
// action backing the re-import cycle.
func (h *StopHandler) ClearAllStops(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.stopService.ClearAllStops(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to clear stops")
		respondError(w, "Failed to clear stops", http.StatusInternalServerError)
		return
	}

	log.Info().Int64("deleted", result.Deleted).Msg("All stops cleared")

	respondJSON(w, http.StatusOK, result)
}
