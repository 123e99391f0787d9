package middleware

import (
	"net/http"
)

// DefaultOrigin is used when no origin is configured.
const DefaultOrigin = "*"

// Cors sets CORS headers for origin on every response and answers preflight
// requests directly.
func Cors(origin string, next http.Handler) http.Handler {
	if origin == "" {
		origin = DefaultOrigin
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
