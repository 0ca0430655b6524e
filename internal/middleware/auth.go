package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/usedgoods/marketplace/internal/ctxkeys"
)

// TokenVerifier resolves a bearer token to the user id it was issued for.
type TokenVerifier interface {
	VerifyJWT(token string) (string, error)
}

// AuthMiddleware reads the bearer token and adds the user id to the context.
// Requests without a token continue anonymously; a bad token is rejected.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				unauthorized(w, "malformed authorization header")
				return
			}

			userID, err := verifier.VerifyJWT(strings.TrimSpace(token))
			if err != nil {
				slog.Debug("rejected token", "error", err, "path", r.URL.Path)
				unauthorized(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(ctxkeys.WithUserID(r.Context(), userID)))
		})
	}
}

// RequireAuth rejects anonymous requests
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.UserID(r.Context()) == "" {
			unauthorized(w, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="marketplace"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
