package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Gizmotronn/where-will-i-meet-you/internal/middleware"
	"github.com/Gizmotronn/where-will-i-meet-you/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// UserHandler handles profile and visit-log HTTP requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// CreateOrGetUserRequest represents the request body for POST /api/v1/users
type CreateOrGetUserRequest struct {
	HomeStopID *string `json:"homeStopId,omitempty"`
}

// CreateOrGetUser handles POST /api/v1/users. First write wins: an
// existing profile is returned unchanged, whatever homeStopId is supplied.
func (h *UserHandler) CreateOrGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deviceID := middleware.GetDeviceID(ctx)

	// An empty body is fine; chunked requests have no ContentLength, so
	// decode unconditionally and let io.EOF mean "no body".
	var req CreateOrGetUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := h.userService.GetOrCreateUser(ctx, deviceID, req.HomeStopID)
	if err != nil {
		log.Error().Err(err).Str("device_id", deviceID).Msg("Failed to get or create user")
		respondError(w, "Failed to get or create user", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// SetHomeStopRequest represents the request body for PUT /api/v1/users/home-stop
type SetHomeStopRequest struct {
	StopID string `json:"stopId"`
}

// SetHomeStop handles PUT /api/v1/users/home-stop
func (h *UserHandler) SetHomeStop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deviceID := middleware.GetDeviceID(ctx)

	var req SetHomeStopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.StopID == "" {
		respondError(w, "stopId is required", http.StatusBadRequest)
		return
	}

	profile, err := h.userService.SetHomeStop(ctx, deviceID, req.StopID)
	if err != nil {
		log.Error().Err(err).Str("device_id", deviceID).Str("stop_id", req.StopID).Msg("Failed to set home stop")
		respondError(w, err.Error(), statusFor(err))
		return
	}

	log.Info().Str("device_id", deviceID).Str("stop_id", req.StopID).Msg("Home stop set")

	respondJSON(w, http.StatusOK, profile)
}

// AddFavoriteRequest represents the request body for POST /api/v1/users/favorites
type AddFavoriteRequest struct {
	CafeID string `json:"cafeId"`
}

// AddFavorite handles POST /api/v1/users/favorites
func (h *UserHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deviceID := middleware.GetDeviceID(ctx)

	var req AddFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.CafeID == "" {
		respondError(w, "cafeId is required", http.StatusBadRequest)
		return
	}

	profile, err := h.userService.AddFavorite(ctx, deviceID, req.CafeID)
	if err != nil {
		log.Error().Err(err).Str("device_id", deviceID).Str("cafe_id", req.CafeID).Msg("Failed to add favorite")
		respondError(w, err.Error(), statusFor(err))
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// RemoveFavorite handles DELETE /api/v1/users/favorites/{cafe_id}
func (h *UserHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deviceID := middleware.GetDeviceID(ctx)
	cafeID := chi.URLParam(r, "cafe_id")

	profile, err := h.userService.RemoveFavorite(ctx, deviceID, cafeID)
	if err != nil {
		log.Error().Err(err).Str("device_id", deviceID).Str("cafe_id", cafeID).Msg("Failed to remove favorite")
		respondError(w, err.Error(), statusFor(err))
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// RecordVisitRequest represents the request body for POST /api/v1/visits
type RecordVisitRequest struct {
	CafeID string `json:"cafeId"`
}

// RecordVisit handles POST /api/v1/visits
func (h *UserHandler) RecordVisit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deviceID := middleware.GetDeviceID(ctx)

	var req RecordVisitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.CafeID == "" {
		respondError(w, "cafeId is required", http.StatusBadRequest)
		return
	}

	visit, err := h.userService.RecordVisit(ctx, deviceID, req.CafeID)
	if err != nil {
		log.Error().Err(err).Str("device_id", deviceID).Str("cafe_id", req.CafeID).Msg("Failed to record visit")
		respondError(w, err.Error(), statusFor(err))
		return
	}

	log.Info().Str("device_id", deviceID).Str("cafe_id", req.CafeID).Msg("Visit recorded")

	respondJSON(w, http.StatusOK, visit)
}

// ListVisits handles GET /api/v1/visits
func (h *UserHandler) ListVisits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deviceID := middleware.GetDeviceID(ctx)

	visits, err := h.userService.ListVisits(ctx, deviceID)
	if err != nil {
		log.Error().Err(err).Str("device_id", deviceID).Msg("Failed to list visits")
		respondError(w, "Failed to list visits", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, visits)
}
