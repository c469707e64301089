package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/clipship/backend/internal/ctxkeys"
	"github.com/clipship/backend/internal/service"
)

// AuthMiddleware resolves the session cookie and stores the identity in the
// request context. Anonymous requests continue without an identity; only a
// profile-store failure aborts the request.
func AuthMiddleware(sessions *service.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := sessions.Resolve(r.Context(), r)
			if err != nil {
				slog.Error("session resolution failed", "error", err)
				writeJSONError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
				return
			}

			if identity == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests with 401. Redirecting to sign-in is
// the presentation layer's job; this API only signals.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.Identity(r.Context()) == nil {
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
