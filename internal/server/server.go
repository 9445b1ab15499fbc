// Package server exposes template parsing and source generation over HTTP.
// Templates are never executed by the server.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tacogips/dcg/internal/app"
	"github.com/tacogips/dcg/internal/config"
)

// Options configures a Server.
type Options struct {
	// Config supplies the server and engine settings. Defaults to
	// config.DefaultConfig().
	Config *config.Config
	// Logger overrides the logger built from the server settings.
	Logger *slog.Logger
	// LogOutput receives logs of the built logger. Defaults to stderr.
	LogOutput io.Writer
}

// Server is the HTTP API server for dcg.
type Server struct {
	router   chi.Router
	renderer *app.Renderer
	log      *slog.Logger
	cfg      *config.Config
}

// New creates and configures the HTTP server.
func New(opts Options) *Server {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log := opts.Logger
	if log == nil {
		out := opts.LogOutput
		if out == nil {
			out = os.Stderr
		}
		log = newLogger(cfg.Server.LogLevel, cfg.Server.LogFormat, out)
	}

	s := &Server{
		renderer: app.NewRenderer(app.RendererOptions{}),
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

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", s.handleGenerate)
		r.Post("/check", s.handleCheck)
	})

	s.router = r
}

// ListenAndServe serves on the configured address until ctx is done, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting dcg server", "addr", s.cfg.Server.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
