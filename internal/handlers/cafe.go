package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Gizmotronn/where-will-i-meet-you/internal/middleware"
	"github.com/Gizmotronn/where-will-i-meet-you/internal/models"
	"github.com/Gizmotronn/where-will-i-meet-you/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// CafeHandler handles cafe-catalog HTTP requests
type CafeHandler struct {
	cafeService *services.CafeService
}

// NewCafeHandler creates a new cafe handler
func NewCafeHandler(cafeService *services.CafeService) *CafeHandler {
	return &CafeHandler{
		cafeService: cafeService,
	}
}

// ListCafes handles GET /api/v1/cafes
func (h *CafeHandler) ListCafes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var filter models.CafeFilter
	if v := r.URL.Query().Get("stop_id"); v != "" {
		filter.StopID = &v
	}
	if v := r.URL.Query().Get("price_at_most"); v != "" {
		tier := models.PriceTier(v)
		if !tier.Valid() {
			respondError(w, "price_at_most must be one of $, $$, $$$", http.StatusBadRequest)
			return
		}
		filter.PriceAtMost = &tier
	}
	if v := r.URL.Query().Get("amenities"); v != "" {
		for _, raw := range strings.Split(v, ",") {
			a := models.Amenity(strings.TrimSpace(raw))
			if !a.Valid() {
				respondError(w, "unknown amenity: "+string(a), http.StatusBadRequest)
				return
			}
			filter.RequiredAmenities = append(filter.RequiredAmenities, a)
		}
	}
	if v := r.URL.Query().Get("ideal_work"); v != "" {
		for _, raw := range strings.Split(v, ",") {
			a := models.WorkActivity(strings.TrimSpace(raw))
			if !a.Valid() {
				respondError(w, "unknown activity: "+string(a), http.StatusBadRequest)
				return
			}
			filter.IdealWork = append(filter.IdealWork, a)
		}
	}

	cafes, err := h.cafeService.ListCafes(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list cafes")
		respondError(w, "Failed to list cafes", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, cafes)
}

// CreateCafe handles POST /api/v1/cafes
func (h *CafeHandler) CreateCafe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deviceID := middleware.GetDeviceID(ctx)

	var req services.CreateCafeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cafe, err := h.cafeService.CreateCafe(ctx, deviceID, req)
	if err != nil {
		log.Error().
			Err(err).
			Str("device_id", deviceID).
			Str("name", req.Name).
			Str("stop_id", req.Location.StopID).
			Msg("Failed to create cafe")
		respondError(w, err.Error(), statusFor(err))
		return
	}

	log.Info().
		Str("cafe_id", cafe.ID).
		Str("name", cafe.Name).
		Str("stop_id", cafe.Location.StopID).
		Msg("Cafe created")

	respondJSON(w, http.StatusOK, cafe)
}

// GetCafe handles GET /api/v1/cafes/{cafe_id}. A missing cafe yields a
// JSON null body, not an error.
func (h *CafeHandler) GetCafe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cafeID := chi.URLParam(r, "cafe_id")

	cafe, err := h.cafeService.GetCafe(ctx, cafeID)
	if err != nil {
		log.Error().Err(err).Str("cafe_id", cafeID).Msg("Failed to get cafe")
		respondError(w, "Failed to get cafe", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, cafe)
}
