package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"
)

const defaultOrigin = "http://localhost:3000"

// CORS builds the cross-origin policy for the reading clients. Credentials
// are only allowed when no wildcard origin is configured.
func CORS(allowedOrigins []string) cors.Options {
	origins := allowedOrigins
	if len(origins) == 0 {
		origins = []string{defaultOrigin}
	}

	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           600,
	}
}
