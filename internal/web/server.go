// Package web serves a record set as an interactive HTML table.
//
// Every browser session owns its own table and sort state. Header, data and
// footer cells are links; following one delivers a click to the session's
// table and redirects back to the page.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/bjaus/datatable"
	"github.com/bjaus/datatable/internal/config"
	"github.com/bjaus/datatable/internal/source"
	"github.com/bjaus/datatable/internal/web/middleware"
)

// Dataset is the record set served by a Server.
type Dataset struct {
	Rows   []source.Row
	Schema datatable.Schema
}

// Server is the HTTP host for one dataset.
type Server struct {
	data     Dataset
	cfg      *config.Config
	router   *chi.Mux
	server   *http.Server
	sessions *sessionStore
}

// NewServer creates a Server for data.
func NewServer(data Dataset, cfg *config.Config) *Server {
	s := &Server{
		data:     data,
		cfg:      cfg,
		router:   chi.NewRouter(),
		sessions: newSessionStore(cfg.Server.SessionTTL, cfg.Server.MaxSessions),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(middleware.SecurityHeaders)
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handlePage)
	s.router.Get("/header/{key}", s.handleHeaderClick)
	s.router.Get("/cell/{row}/{key}", s.handleDataClick)
	s.router.Get("/footer/{key}", s.handleFooterClick)
	s.router.Get("/export/{format}", s.handleExport)
}

// Start listens on the configured address until Shutdown is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("server starting", "addr", s.server.Addr, "rows", len(s.data.Rows))
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
