// package server contains middleware & handlers for the easyhr HTTP API
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/filisonic/easyhr/internal/shared"
	"github.com/filisonic/easyhr/internal/tasks"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, authentication, CORS, rate limiting, etc.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers that own a fixed set of routes.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the "METHOD /path" patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

const shutdownTimeout = 10 * time.Second

// Server serves the API over HTTP.
type Server struct {
	http   *http.Server
	router *BasicRouter
	logger *log.Logger
}

// New builds a server with the full middleware stack and every API route registered.
func New(cfg shared.ServerConfig, engine *tasks.Engine, logger *log.Logger) *Server {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	logger = shared.WithLogger(logger, "component", "server")

	router := NewBasicRouter()
	router.Use(
		Recovery(logger),
		Logging(logger),
		CORS(cfg.AllowedOrigins),
		APIKey(cfg.APIKey, "/health"),
	)
	router.Handler(NewHealthHandler(engine))
	NewAPI(engine, logger).Register(router)

	return &Server{
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		router: router,
		logger: logger,
	}
}

// Handler returns the routed, middleware-wrapped handler.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the listen address.
func (s *Server) Addr() string { return s.http.Addr }

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errs := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
