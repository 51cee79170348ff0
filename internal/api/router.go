package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/doc-translator/backend/internal/api/handlers"
	"github.com/doc-translator/backend/internal/api/middleware"
	"github.com/doc-translator/backend/internal/auth"
	"github.com/doc-translator/backend/internal/config"
	"github.com/doc-translator/backend/internal/db/models"
	"github.com/doc-translator/backend/internal/session"
)

// maxJSONBody caps the JSON endpoints; uploads have their own limits.
const maxJSONBody = 1 << 20

// Database is what the router needs from the account store.
type Database interface {
	handlers.UserStore
	handlers.Pinger
}

func NewRouter(
	cfg *config.Config,
	database Database,
	jwtService *auth.JWTService,
	sessions *session.Store,
	loginLimiter *middleware.RateLimiter,
	log *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(cors.Handler(middleware.CORSOptions(cfg.CORSOrigins)))

	authHandler := handlers.NewAuthHandler(database, jwtService, sessions, log)
	healthHandler := handlers.NewHealthHandler(database)
	documentHandler := handlers.NewDocumentHandler(sessions, cfg.MaxDocumentBytes, log)
	jobHandler := handlers.NewJobHandler(sessions, log)
	dictHandler := handlers.NewDictionaryHandler(sessions, cfg.MaxDictionaryBytes, log)
	settingsHandler := handlers.NewSettingsHandler(sessions, cfg.MaxModelBytes, log)
	adminHandler := handlers.NewAdminHandler(database, sessions, loginLimiter, log)

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.Logger(log)).Get("/health", healthHandler.Health)
		r.With(middleware.Logger(log), loginLimiter.Handler, middleware.MaxBodySize(maxJSONBody)).
			Post("/auth/login", authHandler.Login)

		// Protected routes. Logging sits inside auth so entries carry the user.
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(jwtService))
			r.Use(middleware.Logger(log))

			// Uploads
			r.Post("/document", documentHandler.Upload)
			r.Post("/dictionary/import", dictHandler.Import)
			r.Post("/settings/local/model", settingsHandler.UploadModel)

			r.Group(func(r chi.Router) {
				r.Use(middleware.MaxBodySize(maxJSONBody))

				// Auth
				r.Get("/auth/me", authHandler.Me)
				r.Post("/auth/logout", authHandler.Logout)

				// Document & job
				r.Delete("/document", documentHandler.Clear)
				r.Get("/job", jobHandler.GetJob)
				r.Post("/job/start", jobHandler.StartJob)
				r.Delete("/job", jobHandler.CancelJob)
				r.Get("/job/download", jobHandler.Download)

				// Special words
				r.Get("/dictionary", dictHandler.List)
				r.Post("/dictionary", dictHandler.Add)
				r.Delete("/dictionary/{index}", dictHandler.Remove)
				r.Get("/dictionary/export", dictHandler.Export)

				// Settings
				r.Get("/settings", settingsHandler.GetSettings)
				r.Put("/settings/mode", settingsHandler.SetMode)
				r.Put("/settings/local", settingsHandler.UpdateLocal)
				r.Put("/settings/remote", settingsHandler.UpdateRemote)
				r.Post("/settings/remote/test", settingsHandler.TestConnection)
				r.Get("/settings/remote/models", settingsHandler.ListModels)
				r.Post("/settings/save", settingsHandler.Save)

				// Admin
				r.Route("/admin", func(r chi.Router) {
					r.Use(middleware.RequireRole(models.RoleAdmin))
					r.Get("/users", adminHandler.ListUsers)
					r.Post("/users", adminHandler.CreateUser)
					r.Get("/stats", adminHandler.DashboardStats)
					r.Get("/ratelimit", adminHandler.RateLimitStatus)
					r.Delete("/ratelimit", adminHandler.ClearRateLimit)
				})
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	})

	return r
}
