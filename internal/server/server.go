// Package server exposes the generation pipeline over HTTP for the browser
// frontend.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"songsmith/internal/config"
	"songsmith/internal/core"
	"songsmith/internal/gen"
	"songsmith/internal/logger"
	"songsmith/internal/pipeline"
	"songsmith/internal/search"
)

// GenerationService is the pipeline surface the handlers call.
// *pipeline.Pipeline satisfies it.
type GenerationService interface {
	Generate(ctx context.Context, req pipeline.GenerateRequest) (*core.GenerationResult, error)
	Refine(ctx context.Context, req gen.RefineRequest) (*core.RefinementResult, error)
}

// MetadataResolver resolves media URLs for the /api/resolve endpoint.
type MetadataResolver interface {
	Resolve(ctx context.Context, rawURL string) *core.ResolvedMetadata
}

// ContextGatherer serves the /api/search endpoint.
type ContextGatherer interface {
	Backend() search.ProviderType
	GatherContext(ctx context.Context, query string) string
}

// SeparationService proxies the external stem-separation backend.
type SeparationService interface {
	Configured() bool
	Submit(ctx context.Context, path string) (string, error)
	Status(ctx context.Context, taskID string) (*core.SeparationJob, error)
}

// Deps are the services the server routes requests to.
type Deps struct {
	Pipeline   GenerationService
	Resolver   MetadataResolver
	Search     ContextGatherer
	Separation SeparationService
}

// Server is the HTTP API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	deps       Deps
	config     config.Server
}

// New creates an HTTP server around the given services.
func New(deps Deps, cfg config.Server) *Server {
	s := &Server{
		router: chi.NewRouter(),
		deps:   deps,
		config: cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)

	// Generation requests can legitimately take a while; the model call plus
	// overload retries must fit inside this window.
	s.router.Use(middleware.Timeout(120 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/generate", s.handleGenerate)
		r.Post("/refine", s.handleRefine)
		r.Post("/resolve", s.handleResolve)
		r.Post("/search", s.handleSearch)
		r.Post("/separate", s.handleSeparate)
		r.Get("/separate/{id}", s.handleSeparationStatus)
	})
}

// Start begins serving and blocks until the server stops.
func (s *Server) Start() error {
	logger.Info("HTTP server starting", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the handler tree, used by tests.
func (s *Server) Router() http.Handler {
	return s.router
}
