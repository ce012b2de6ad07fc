package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/angelmondragon/tableside-backend/pkg/config"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000", // web client dev server
	"http://localhost:8080", // mini program devtools proxy
}

// CORS applies the configured origin policy for the web client.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = defaultCORSOrigins
	}
	wildcard := len(origins) == 1 && origins[0] == "*"
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: !wildcard,
		MaxAge:           300,
	}).Handler
}
