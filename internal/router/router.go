package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/FACorreiaa/go-travel-assistant/internal/api/chat"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/searchlog"
)

// Config contains dependencies needed for the router setup
type Config struct {
	ChatHandler      *chat.Handler
	SearchLogHandler *searchlog.Handler
	MetricsHandler   http.Handler
	AllowedOrigins   []string
}

// SetupRouter builds the application routes. Server-wide middleware is
// applied in main before mounting.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/chat/sessions", func(r chi.Router) {
			r.Post("/", cfg.ChatHandler.CreateSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Delete("/", cfg.ChatHandler.DeleteSession)
				r.Post("/messages", cfg.ChatHandler.SendMessage)
				r.Post("/reset", cfg.ChatHandler.ResetChat)
				r.Get("/location", cfg.ChatHandler.GetCurrentLocation)
			})
		})

		r.Get("/nearby", cfg.ChatHandler.GetNearby)

		r.Route("/admin/searches", func(r chi.Router) {
			r.Get("/", cfg.SearchLogHandler.GetRecentSearches)
			r.Get("/summary", cfg.SearchLogHandler.GetSearchSummary)
		})
	})

	return r
}
