package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS allows the given origins; an empty list or "*" allows any origin like
// the public checkout widget expects.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}

	if allowAll {
		return cors.AllowAll().Handler
	}

	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept", TraceIDHeader},
		ExposedHeaders: []string{TraceIDHeader},
		MaxAge:         600,
	}).Handler
}
