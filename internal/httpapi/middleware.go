package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// contextKey is an unexported type for context keys in this package, so keys
// cannot collide with other packages using the same underlying string.
type contextKey string

const (
	// HeaderXRequestID is the inbound request id header.
	HeaderXRequestID = "x-request-id"

	// ContextKeyRequestID carries the request id through the saga's detached
	// context so log records stay correlated after the response is sent.
	ContextKeyRequestID contextKey = HeaderXRequestID
)

// AttachRequestMetadata copies the chi request id into a typed context key.
func AttachRequestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		ctx := context.WithValue(r.Context(), ContextKeyRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the request id attached by the middleware,
// or "" when absent.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}
