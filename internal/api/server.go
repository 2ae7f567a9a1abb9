// Package api exposes paginated editing sessions over HTTP: upload a
// document, read its pages, apply edits, watch the layout resettle.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pagemill/pagemill/internal/config"
	"github.com/pagemill/pagemill/internal/measure"
	"github.com/pagemill/pagemill/internal/session"
)

// Server is the HTTP API server for pagemill.
type Server struct {
	router   chi.Router
	sessions *session.Registry
	view     *measure.View
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(sessions *session.Registry, view *measure.View, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		sessions: sessions,
		view:     view,
		log:      log,
		cfg:      cfg,
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

	// Session endpoints, authenticated when an API key is configured.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/sessions", s.handleCreateSession)
		r.Get("/api/sessions/{sessionID}", s.handleGetSession)
		r.Post("/api/sessions/{sessionID}/edits", s.handleEdit)
		r.Delete("/api/sessions/{sessionID}", s.handleDeleteSession)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
