// Package api provides the HTTP API server and handlers for the Narravo application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/narravoapp/narravo-server/internal/http/response"
	"github.com/narravoapp/narravo-server/internal/service"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	narrations *service.NarrationService
	playback   *service.PlaybackService
	sseHandler http.Handler
	router     *chi.Mux
	api        huma.API
	logger     *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(narrations *service.NarrationService, playback *service.PlaybackService, sseHandler http.Handler, logger *slog.Logger) *Server {
	s := &Server{
		narrations: narrations,
		playback:   playback,
		sseHandler: sseHandler,
		router:     chi.NewRouter(),
		logger:     logger,
	}

	s.setupMiddleware()

	RegisterErrorHandler()
	config := huma.DefaultConfig("Narravo API", "1.0.0")
	config.DocsPath = "/api/v1/docs"
	s.api = humachi.New(s.router, config)

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	// The browser front end is served from its own dev server during
	// development, so the API must answer cross-origin.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes. JSON endpoints go through huma;
// the WAV download and the SSE stream stay raw chi handlers since they do
// not produce JSON bodies.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)

	s.registerCatalogRoutes()
	s.registerNarrationRoutes()
	s.registerPlaybackRoutes()

	s.router.Get("/api/v1/narrations/{id}/audio", s.handleNarrationAudio)
	s.router.Get("/api/v1/events", s.sseHandler.ServeHTTP)
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
