package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/liflo-ai/liflo/internal/ctxkeys"
)

// Authenticator resolves a bearer token to a user id.
type Authenticator interface {
	Authenticate(token string) (string, error)
}

// RequireAuth puts the authenticated user id in the request context or
// answers 401.
func RequireAuth(auth Authenticator) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			userID, err := auth.Authenticate(BearerToken(r))
			if err != nil {
				slog.Debug("authentication failed", "error", err, "path", r.URL.Path, "requestID", ctxkeys.RequestID(r.Context()))
				writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			}

			ctx := ctxkeys.WithUserID(r.Context(), userID)
			next(w, r.WithContext(ctx))
		}
	}
}

// BearerToken returns the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
