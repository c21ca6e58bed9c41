package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const deviceIDKey contextKey = "device_id"

// DeviceIDHeader carries the opaque per-device identifier the client
// generates once and persists locally. The server never validates its
// format beyond non-empty.
const DeviceIDHeader = "X-Device-ID"

// RequireDeviceID rejects requests without a device identifier and puts
// the identifier on the request context.
func RequireDeviceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deviceID := r.Header.Get(DeviceIDHeader)
		if deviceID == "" {
			respondError(w, "X-Device-ID header required", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), deviceIDKey, deviceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetDeviceID extracts the device identifier from context.
func GetDeviceID(ctx context.Context) string {
	deviceID, ok := ctx.Value(deviceIDKey).(string)
	if !ok {
		return ""
	}
	return deviceID
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
