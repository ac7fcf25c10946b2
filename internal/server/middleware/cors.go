package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/leslieo2/go-user-demo/internal/config"
)

// CORS answers preflight requests and decorates responses for allowed origins.
func CORS(cfg config.CORSConfig) Middleware {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})
	return c.Handler
}
