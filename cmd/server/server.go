// cmd/server/server.go
package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/rs/zerolog/log"

	"github.com/codr1/roombook/internal/api"
	"github.com/codr1/roombook/internal/api/bookings"
	"github.com/codr1/roombook/internal/config"
	"github.com/codr1/roombook/internal/ratelimit"
)

func newServer(cfg *config.Config, limiter *ratelimit.Limiter) *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)

	// Register routes
	registerRoutes(router, cfg, limiter)

	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      handlers.CompressHandler(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux, cfg *config.Config, limiter *ratelimit.Limiter) {
	// Main page handler
	mux.HandleFunc("GET /", bookings.HandleDashboard)

	// Health check
	mux.HandleFunc("GET /health", bookings.HandleHealth)

	// Booking routes
	submitLimit := api.WithSubmitLimit(limiter, cfg.Limits.TrustProxy)
	mux.HandleFunc("GET /api/v1/schedule", bookings.HandleSchedule)
	mux.HandleFunc("GET /api/v1/bookings", bookings.HandleBookingsList)
	mux.Handle("POST /api/v1/bookings", submitLimit(http.HandlerFunc(bookings.HandleBookingCreate)))
	mux.Handle("POST /api/v1/bookings/reset", submitLimit(http.HandlerFunc(bookings.HandleBookingsReset)))

	// Static file handling with logging and environment awareness
	staticDir := cfg.App.StaticDir
	fs := http.FileServer(http.Dir(staticDir))

	// Add logging middleware for static files
	mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Ctx(r.Context()).Debug().
			Str("path", r.URL.Path).
			Str("static_dir", staticDir).
			Msg("Static file request")
		http.StripPrefix("/static/", fs).ServeHTTP(w, r)
	}))
}
