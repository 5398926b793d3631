package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"

	"github.com/soundshelf/soundshelf-backend/pkg/config"
)

const defaultCORSOrigin = "http://localhost:3000"

// CORS returns middleware that applies the API's allowed origin policy. The
// caller origin is a single configurable frontend host.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	origin := strings.TrimSpace(cfg.AllowedOrigin)
	if origin == "" {
		origin = defaultCORSOrigin
	}
	return cors.New(cors.Options{
		AllowedOrigins:   []string{origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
