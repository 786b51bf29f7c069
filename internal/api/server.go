package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/docview/internal/config"
	"github.com/dgallion1/docview/internal/findings"
	"github.com/dgallion1/docview/internal/highlight"
	"github.com/dgallion1/docview/internal/surface"
)

// Server is the HTTP surface of the findings viewer.
type Server struct {
	router  chi.Router
	doc     *surface.Document
	ctrl    *highlight.Controller
	payload *findings.Payload
	views   payloadViews
	log     *slog.Logger
	cfg     config.Config
}

// NewServer creates and configures the HTTP server. Markdown in the payload
// is rendered once here; the payload is immutable for the session.
func NewServer(doc *surface.Document, ctrl *highlight.Controller, payload *findings.Payload, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		doc:     doc,
		ctrl:    ctrl,
		payload: payload,
		views:   buildViews(payload),
		log:     log,
		cfg:     cfg,
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
	r.Get("/", s.handleIndex)

	r.Group(func(r chi.Router) {
		// Auth is optional; the viewer is open when no key is set.
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Get("/api/document", s.handleDocument)
		r.Get("/api/findings", s.handleFindings)
		r.Get("/api/evidence", s.handleEvidence)
		r.Get("/api/analysis", s.handleAnalysis)

		r.Post("/api/select/{findingID}", s.handleSelect)
		r.Get("/api/state", s.handleState)
		r.Post("/api/viewport", s.handleViewport)

		r.Get("/api/pages/{page}/fragments", s.handlePageFragments)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
