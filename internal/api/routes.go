package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"ski-search/internal/db"
	"ski-search/internal/normalize"
	"ski-search/internal/observability"
)

// NewRouter creates and configures the Chi router. reg may be nil when
// metrics are served elsewhere.
func NewRouter(database *db.DB, profile normalize.Profile, reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(Logger)
	r.Use(CORS)

	h := NewHandlers(database, profile)

	r.Route("/api", func(r chi.Router) {
		r.Get("/resorts", h.ListResorts)
		r.Get("/resorts/{id}", h.GetResort)
		r.Get("/filters/options", h.GetFilterOptions)
	})

	if reg != nil {
		r.Handle("/metrics", observability.MetricsHandler(reg))
	}

	return r
}
