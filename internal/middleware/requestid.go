package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/liflo-ai/liflo/internal/ctxkeys"
)

const RequestIDHeader = "X-Request-ID"

// RequestID propagates a caller-supplied X-Request-ID or assigns a new
// one, and stamps the request start time used for audit latency.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if !validRequestID(id) {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := ctxkeys.WithRequestID(r.Context(), id)
		ctx = ctxkeys.WithRequestStart(ctx, time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func validRequestID(id string) bool {
	if id == "" || len(id) > 128 {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-' || c == '_' || c == '.' || c == ':':
		default:
			return false
		}
	}
	return true
}
