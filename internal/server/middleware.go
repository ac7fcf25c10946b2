package server

import (
	"net/http"
	"time"

	"github.com/leslieo2/go-user-demo/internal/server/middleware"
)

// applyMiddleware wraps handler with the full chain, outermost first.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.currentConfig()

	return middleware.Chain(handler,
		middleware.RequestID(),
		middleware.Logging(s.logger.Logger, s.recordRequest),
		middleware.SecurityHeaders(cfg.Security.Headers),
		middleware.CORS(cfg.Security.CORS),
		s.rateLimiter.Middleware,
		middleware.RequestSizeLimit(cfg.Server.MaxRequestSize),
		middleware.Delay(s.logger.Logger, s.clock),
	)
}

func (s *Server) recordRequest(r *http.Request, rec *middleware.StatusRecorder, elapsed time.Duration) {
	endpoint := r.Pattern
	if endpoint == "" {
		endpoint = "unmatched"
	}
	size := r.ContentLength
	if size < 0 {
		size = 0
	}
	s.metrics.RecordRequest(r.Method, endpoint, rec.Status, elapsed, size, rec.Bytes)
}
