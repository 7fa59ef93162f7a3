package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"flamecompanion/internal/config"
)

// APIService owns the HTTP server lifecycle
type APIService struct {
	config *config.Config
	logger *slog.Logger
	server *http.Server
}

// New creates a new API service around a fully routed handler
func New(config *config.Config, logger *slog.Logger, handler http.Handler) *APIService {
	return &APIService{
		config: config,
		logger: logger,
		server: &http.Server{
			Addr:         ":" + config.Port,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 120 * time.Second, // synchronous extraction can take a while
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start begins serving the API
func (s *APIService) Start() error {
	s.logger.Info("Starting API server", "port", s.config.Port)
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the API server
func (s *APIService) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server...")
	return s.server.Shutdown(ctx)
}
