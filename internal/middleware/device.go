package middleware

import (
	"context"
	"net/http"
)

const DeviceIDKey contextKey = "device_id"

// DeviceIDHeader carries the caller's device identifier. Cart, wishlist and
// currency state are scoped to it, so guests keep their state across requests
// without an account.
const DeviceIDHeader = "X-Device-ID"

// RequireDeviceID rejects requests to device-scoped routes that carry no
// device identifier.
func RequireDeviceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deviceID := r.Header.Get(DeviceIDHeader)
		if deviceID == "" {
			respondWithError(w, http.StatusBadRequest, "missing "+DeviceIDHeader+" header")
			return
		}

		ctx := context.WithValue(r.Context(), DeviceIDKey, deviceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetDeviceID extracts the device identifier from the request context.
func GetDeviceID(ctx context.Context) (string, bool) {
	deviceID, ok := ctx.Value(DeviceIDKey).(string)
	return deviceID, ok
}
