// Package server provides HTTP server setup and lifecycle management.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tonecanvas/tonecanvas-go/internal/application/container"
	"github.com/tonecanvas/tonecanvas-go/internal/presentation/http/routes"
)

// Server wraps the HTTP server with dependency injection container.
type Server struct {
	httpServer *http.Server
	container  *container.Container
}

// New creates a new server instance listening on the configured port.
func New(container *container.Container) *Server {
	cfg := container.Config
	router := routes.SetupRoutes(container)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout(),
			WriteTimeout: cfg.WriteTimeout(),
			IdleTimeout:  cfg.IdleTimeout(),
		},
		container: container,
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for HTTP requests. It blocks until the server stops.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
