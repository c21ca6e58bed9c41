package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Gizmotronn/where-will-i-meet-you/internal/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps service errors to HTTP statuses. Absence never reaches
// here: read paths surface it as empty data with a 200.
func statusFor(err error) int {
	if errors.Is(err, services.ErrValidation) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
