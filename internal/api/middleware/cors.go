package middleware

import (
	"slices"

	"github.com/go-chi/cors"
)

// CORSOptions allows the UI origins to call the API and read download
// headers. An empty list means any origin, without credentials.
func CORSOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		// the UI reads the file name of translated downloads
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After", "X-Request-Id"},
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           300,
	}
}
