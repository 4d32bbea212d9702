// Package web provides the HTTP server that exposes the converter.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/premiscsv2xml/internal/config"
	"github.com/JonMunkholm/premiscsv2xml/internal/core"
	premismw "github.com/JonMunkholm/premiscsv2xml/internal/web/middleware"
)

// Server is the HTTP server for the PREMIS converter.
type Server struct {
	converter *core.Converter
	limiter   *core.Limiter
	router    *chi.Mux
	server    *http.Server
	cfg       config.ServerConfig
	indent    int
}

// NewServer creates a new Server instance.
func NewServer(converter *core.Converter, cfg *config.Config) *Server {
	s := &Server{
		converter: converter,
		limiter:   core.NewLimiter(cfg.Server.MaxConcurrent, cfg.Server.MaxWait),
		router:    chi.NewRouter(),
		cfg:       cfg.Server,
		indent:    cfg.Convert.Indent,
	}
	s.setupMiddleware()
	s.setupRoutes()
	s.server = &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(premismw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.RequestTimeout))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", templ.Handler(uploadPage()).ServeHTTP)
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/convert", s.handleConvert)
	})
}

// ServeHTTP lets the server be used directly as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start begins listening on the configured address.
// It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests and waits for running conversions.
func (s *Server) Shutdown(ctx context.Context) error {
	if active := s.limiter.Active(); active > 0 {
		slog.Info("waiting for conversions to complete", "active", active)
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return s.limiter.WaitForDrain(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
