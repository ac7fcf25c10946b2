package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/leslieo2/go-user-demo/internal/constants"
)

// Delay holds the response when the request carries a __delay query parameter,
// simulating a slow backend. Bare numbers are milliseconds.
func Delay(logger *zap.Logger, clock clockwork.Clock) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.URL.Query().Get(constants.QueryParamDelay)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			d, err := ParseDelay(raw)
			if err != nil {
				logger.Warn("Invalid delay parameter",
					zap.String("delay", raw),
					zap.String("path", r.URL.Path),
					zap.Error(err))
			} else if d > 0 {
				select {
				case <-clock.After(d):
				case <-r.Context().Done():
					logger.Debug("Request cancelled during delay",
						zap.String("path", r.URL.Path),
						zap.Duration("delay", d))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ParseDelay accepts "250", "250ms" or "2s". Negative values mean no delay and
// values above MaxDelayDuration are capped.
func ParseDelay(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)

	var d time.Duration
	if ms, err := strconv.Atoi(raw); err == nil {
		d = time.Duration(ms) * time.Millisecond
	} else {
		d, err = time.ParseDuration(raw)
		if err != nil {
			return 0, err
		}
	}

	return min(max(d, 0), constants.MaxDelayDuration), nil
}
