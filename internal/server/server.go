// Package server provides the HTTP server and routing for the simulation.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/azimonti/quantum-entanglement-simulation/internal/config"
	"github.com/azimonti/quantum-entanglement-simulation/internal/events"
	"github.com/azimonti/quantum-entanglement-simulation/internal/session"
)

// Config holds server configuration
type Config struct {
	Port     int
	Log      zerolog.Logger
	Cfg      *config.Config
	Sessions *session.Manager
	Bus      *events.Bus
}

// Server represents the HTTP server
type Server struct {
	router   *chi.Mux
	server   *http.Server
	log      zerolog.Logger
	cfg      *config.Config
	sessions *session.Manager
	live     *LiveHub
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		log:      cfg.Log.With().Str("component", "server").Logger(),
		cfg:      cfg.Cfg,
		sessions: cfg.Sessions,
		live:     NewLiveHub(cfg.Bus, cfg.Log),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // The live feed holds its connection open.
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/events/live", s.live.ServeHTTP)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Put("/direction", s.handleSetDirection)
				r.Put("/invert", s.handleSetInvert)
				r.Post("/measure", s.handleMeasureSingle)
				r.Post("/measure-joint", s.handleMeasureJoint)
				r.Post("/trials", s.handleRunTrials)
				r.Get("/snapshot", s.handleSnapshot)
				r.Get("/bell", s.handleBell)
			})
		})
	})
}

// Start begins listening for requests
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.live.Close()
	return s.server.Shutdown(ctx)
}

// Router exposes the mux for tests.
func (s *Server) Router() http.Handler { return s.router }
