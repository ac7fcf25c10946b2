package server

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Name identifies the server to the hot reload coordinator.
func (s *Server) Name() string {
	return "server"
}

// Reload re-reads configuration and applies the logging level. Listener,
// security and view settings take effect on restart only.
func (s *Server) Reload(ctx context.Context) error {
	if s.loader == nil {
		return errors.New("no configuration source to reload from")
	}

	next, err := s.loader()
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}

	if err := s.logger.SetLevel(next.Observability.Logging.Level); err != nil {
		return err
	}

	s.mu.Lock()
	prev := s.config
	// keep the listener settings the running servers were built from
	next.Server = prev.Server
	next.TLS = prev.TLS
	s.config = next
	s.mu.Unlock()

	if next.App != prev.App {
		s.logger.Warn("App settings changed; restart to apply", zap.String("title", next.App.Title))
	}
	s.logger.Info("Configuration reloaded",
		zap.String("file", next.ConfigFile),
		zap.String("log_level", next.Observability.Logging.Level))
	return nil
}
