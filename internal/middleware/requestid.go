package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/usedgoods/marketplace/internal/ctxkeys"
)

// RequestID tags each request with an id, reusing X-Request-ID when the client sent one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" || len(id) > 64 {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(ctxkeys.WithRequestID(r.Context(), id)))
	})
}
