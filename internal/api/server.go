package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/chatmark/internal/cache"
	"github.com/dgallion1/chatmark/internal/config"
	"github.com/dgallion1/chatmark/internal/pipeline"
	"github.com/dgallion1/chatmark/internal/render"
	"github.com/dgallion1/chatmark/internal/stats"
	"github.com/dgallion1/chatmark/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for chatmark.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	docs         *cache.DocumentCache
	html         *render.HTMLRenderer
	docx         *render.DOCXRenderer
	store        *store.Store
	stats        *stats.RenderStats
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. st may be nil when
// persistence is disabled.
func NewServer(orch *pipeline.Orchestrator, docs *cache.DocumentCache, hl *render.Highlighter, st *store.Store, rs *stats.RenderStats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		docs:         docs,
		html:         render.NewHTMLRenderer(hl),
		docx:         render.NewDOCXRenderer(hl),
		store:        st,
		stats:        rs,
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

		r.Post("/api/render", s.handleRender)
		r.Post("/api/render/stream", s.handleRenderStream)
		r.Post("/api/render/batch", s.handleBatchRender)
		r.Get("/api/render/batch/{jobID}", s.handleBatchStatus)

		r.Get("/api/documents", s.handleListDocuments)
		r.Get("/api/documents/{hash}", s.handleGetDocument)
		r.Delete("/api/documents/{hash}", s.handleDeleteDocument)

		r.Post("/api/export/docx", s.handleExportDOCX)
		r.Get("/api/stats/render", s.handleRenderStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
