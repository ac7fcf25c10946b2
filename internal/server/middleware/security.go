package middleware

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"slices"

	"github.com/leslieo2/go-user-demo/internal/config"
	"github.com/leslieo2/go-user-demo/internal/constants"
)

// SecurityHeaders sets hardening headers and enforces the allowed host list.
// HSTS is only sent over TLS.
func SecurityHeaders(cfg config.SecurityHeaders) Middleware {
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			if r.TLS != nil && cfg.HSTSMaxAge > 0 {
				h.Set("Strict-Transport-Security", fmt.Sprintf("max-age=%d; includeSubDomains", cfg.HSTSMaxAge))
			}
			if cfg.ContentSecurityPolicy != "" {
				h.Set("Content-Security-Policy", cfg.ContentSecurityPolicy)
			}

			if len(cfg.AllowedHosts) > 0 && !hostAllowed(r.Host, cfg.AllowedHosts) {
				h.Set(constants.HeaderContentType, constants.ContentTypeJSON)
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error":   "HOST_NOT_ALLOWED",
					"message": "Host not allowed",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func hostAllowed(host string, allowed []string) bool {
	if slices.Contains(allowed, host) {
		return true
	}
	if name, _, err := net.SplitHostPort(host); err == nil {
		return slices.Contains(allowed, name)
	}
	return false
}
