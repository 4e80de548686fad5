// Package api exposes the unary HTTP endpoints and the WebSocket upgrade
// route over a chi router.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yegors/vatmap/internal/config"
	"github.com/yegors/vatmap/internal/relay"
	"github.com/yegors/vatmap/internal/storage/sqlite"
	"github.com/yegors/vatmap/internal/ws"
	"github.com/yegors/vatmap/pkg/logger"
)

// Router is the API router
type Router struct {
	handler    *Handler
	middleware *Middleware
	config     *config.Config
	logger     *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(r *relay.Relay, tracks *sqlite.TrackStorage, wsServer *ws.Server, cfg *config.Config, log *logger.Logger) *Router {
	return &Router{
		handler:    NewHandler(r, tracks, wsServer, log),
		middleware: NewMiddleware(log),
		config:     cfg,
		logger:     log.Named("api-router"),
	}
}

// Routes returns the API routes
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	router.Use(r.middleware.RequestID)
	router.Use(r.middleware.Logger)
	router.Use(r.middleware.Recoverer)
	router.Use(r.middleware.CORS(r.config.Server.CORSAllowedOrigins))

	router.Route("/api/v1", func(router chi.Router) {
		// Pilot routes
		router.Get("/pilots", r.handler.GetPilots)
		router.Get("/pilots/{callsign}", r.handler.GetPilotByCallsign)
		router.Get("/pilots/{callsign}/track", r.handler.GetPilotTrack)

		// Airport routes
		router.Get("/airports/{code}", r.handler.GetAirportByCode)

		// Query validation
		router.Post("/query/check", r.handler.CheckQuery)

		// WebSocket route
		router.Get("/ws", r.handler.HandleWebSocket)

		// Health check and build info
		router.Get("/health", r.handler.GetHealth)
		router.Get("/build", r.handler.GetBuild)
	})

	return router
}
