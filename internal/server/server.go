// Package server exposes deal scoring and fund benchmarking over a JSON HTTP API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/dealscore/internal/benchmark"
	"github.com/sells-group/dealscore/internal/config"
	"github.com/sells-group/dealscore/internal/scorer"
	"github.com/sells-group/dealscore/internal/store"
)

// Deps are the collaborators the handlers call into.
type Deps struct {
	Store       store.Store
	Scorer      *scorer.Scorer
	Benchmarker *benchmark.Benchmarker
}

// Server is the HTTP API server.
type Server struct {
	router  *chi.Mux
	server  *http.Server
	deps    Deps
	cfg     config.ServerConfig
	limiter *rate.Limiter
}

// New builds the router and the underlying http.Server.
func New(cfg config.ServerConfig, deps Deps) *Server {
	s := &Server{
		router: chi.NewRouter(),
		deps:   deps,
		cfg:    cfg,
	}
	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst < 1 {
			burst = max(1, int(cfg.RateLimitRPS))
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Timeout(20 * time.Second))

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	if s.limiter != nil {
		s.router.Use(s.rateLimit)
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/projects", func(r chi.Router) {
			r.Post("/", s.handleSaveProject)
			r.Get("/", s.handleListProjects)
		})
		r.Route("/deals", func(r chi.Router) {
			r.Post("/score", s.handleScoreDeal)
			r.Get("/scores", s.handleListScores)
			r.Get("/{projectID}/score", s.handleLatestScore)
		})
		r.Route("/benchmarks", func(r chi.Router) {
			r.Post("/", s.handleBenchmarks)
			r.Get("/latest", s.handleLatestBenchmarks)
			r.Get("/latest/insights", s.handleLatestInsights)
		})
	})
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	zap.L().Info("starting server", zap.Int("port", s.cfg.Port))
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	zap.L().Info("shutting down server")
	return s.server.Shutdown(ctx)
}
