package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/papersum/internal/config"
	"github.com/dgallion1/papersum/internal/corpus"
	"github.com/dgallion1/papersum/internal/generate"
	"github.com/dgallion1/papersum/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for papersum.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	store        *corpus.Store
	backend      *generate.Backend
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. backend may be nil.
func NewServer(orch *pipeline.Orchestrator, backend *generate.Backend, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		store:        orch.Store(),
		backend:      backend,
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

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/extract", s.handleExtract)
		r.Post("/api/papers", s.handleSubmitPaper)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)

		r.Get("/api/papers", s.handleListPapers)
		r.Get("/api/papers/{paperID}", s.handleGetPaper)
		r.Get("/api/papers/{paperID}/summaries", s.handleGetSummaries)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
