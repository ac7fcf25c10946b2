package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// StatusRecorder captures the status code and body size written by the wrapped handler.
type StatusRecorder struct {
	http.ResponseWriter
	Status int
	Bytes  int64
}

func (rw *StatusRecorder) WriteHeader(code int) {
	rw.Status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *StatusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.Bytes += int64(n)
	return n, err
}

// Logging writes one structured line per request. observe, when set, receives the
// recorder and latency so the caller can feed metrics.
func Logging(logger *zap.Logger, observe func(r *http.Request, rec *StatusRecorder, elapsed time.Duration)) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &StatusRecorder{ResponseWriter: w, Status: http.StatusOK}

			next.ServeHTTP(rec, r)

			elapsed := time.Since(start)
			if observe != nil {
				observe(r, rec, elapsed)
			}

			logger.Info("HTTP request",
				zap.String("request_id", RequestIDFromContext(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Int("status_code", rec.Status),
				zap.Int64("response_size", rec.Bytes),
				zap.Duration("duration", elapsed),
				zap.String("user_agent", r.UserAgent()),
			)
		})
	}
}
