// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/courtdesk/courtdesk/internal/api"
	availabilityapi "github.com/courtdesk/courtdesk/internal/api/availability"
	"github.com/courtdesk/courtdesk/internal/api/clubhours"
	"github.com/courtdesk/courtdesk/internal/api/statistics"
	"github.com/courtdesk/courtdesk/internal/availability"
	"github.com/courtdesk/courtdesk/internal/config"
	"github.com/courtdesk/courtdesk/internal/db"
	"github.com/courtdesk/courtdesk/internal/stats"
)

func newServer(cfg *config.Config, database *db.DB, builder *availability.Builder, statsService *stats.Service) *http.Server {
	availabilityapi.InitHandlers(builder)
	statistics.InitHandlers(statsService, database.Queries)
	clubhours.InitHandlers(database.Queries)

	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithMetrics,
		api.WithRequestID,
	)

	registerRoutes(router, cfg)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux, cfg *config.Config) {
	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if cfg.Features.EnableMetrics {
		mux.Handle("/metrics", promhttp.Handler())
	}

	// Availability routes
	mux.HandleFunc("GET /api/v1/availability", availabilityapi.HandleWeeklyAvailability)

	// Statistics routes
	mux.HandleFunc("GET /api/v1/statistics/daily", statistics.HandleDailyStatistics)
	mux.HandleFunc("GET /api/v1/statistics/monthly", statistics.HandleMonthlyStatistics)
	mux.HandleFunc("POST /api/v1/statistics/recompute", statistics.HandleRecompute)

	// Club hours routes
	mux.HandleFunc("GET /api/v1/clubs/hours", clubhours.HandleHoursList)
	mux.HandleFunc("PUT /api/v1/clubs/hours/{day_of_week}", clubhours.HandleHoursUpdate)
	mux.HandleFunc("PUT /api/v1/clubs/special-hours/{date}", clubhours.HandleSpecialHoursUpdate)
	mux.HandleFunc("DELETE /api/v1/clubs/special-hours/{date}", clubhours.HandleSpecialHoursDelete)
}
