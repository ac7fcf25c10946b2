package server

import (
	"net/http"

	"github.com/leslieo2/go-user-demo/internal/constants"
)

// Handler returns the routed mux wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+constants.PathView+"{$}", s.viewHandler)
	mux.HandleFunc("POST "+constants.PathSampleUser, s.addSampleUserHandler)

	mux.HandleFunc("GET "+constants.PathAPIUsers, s.listUsersHandler)
	mux.HandleFunc("POST "+constants.PathAPIUsers, s.createUserHandler)
	mux.HandleFunc("GET "+constants.PathAPIUser, s.getUserHandler)
	mux.HandleFunc("GET "+constants.PathAPIHealth, s.apiHealthHandler)

	mux.HandleFunc("GET "+constants.PathHealth, s.healthHandler)
	mux.HandleFunc("GET "+constants.PathReady, s.readinessHandler)
	mux.HandleFunc("GET "+constants.PathDocs, s.docsHandler)
	if cfg := s.currentConfig(); cfg.Observability.Metrics.Enabled {
		mux.Handle("GET "+cfg.Observability.Metrics.Path, s.metrics.Handler())
	}

	return s.applyMiddleware(mux)
}
