package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dgallion1/bookbind/internal/catalog"
	"github.com/dgallion1/bookbind/internal/config"
	"github.com/dgallion1/bookbind/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// Server is the HTTP API server for bookbind.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	catalog      *catalog.Loader
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, cat *catalog.Loader, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		catalog:      cat,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Get("/api/catalog", s.handleCatalog)
		r.With(httprate.LimitByIP(s.cfg.GenerateRPM, time.Minute)).
			Post("/api/books/{bookID}/generate", s.handleGenerate)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/jobs/{jobID}/document", s.handleDocument)
		r.Get("/api/jobs/{jobID}/ws", s.handleJobSocket)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
