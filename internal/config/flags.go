package config

import "github.com/spf13/pflag"

// RegisterFlags defines the configuration flags on fs. Defaults mirror
// DefaultConfig so that the usage text stays accurate.
func RegisterFlags(fs *pflag.FlagSet) *CLIFlags {
	def := DefaultConfig()
	return &CLIFlags{
		Set: fs,

		Host:            fs.String("host", def.Server.Host, "Host to run the server on"),
		Port:            fs.String("port", def.Server.Port, "Port to run the server on"),
		MetricsPort:     fs.String("metrics-port", def.Server.MetricsPort, "Port to run the metrics server on"),
		ReadTimeout:     fs.Duration("read-timeout", def.Server.ReadTimeout, "HTTP server read timeout"),
		WriteTimeout:    fs.Duration("write-timeout", def.Server.WriteTimeout, "HTTP server write timeout"),
		IdleTimeout:     fs.Duration("idle-timeout", def.Server.IdleTimeout, "HTTP server idle timeout"),
		MaxRequestSize:  fs.Int64("max-request-size", def.Server.MaxRequestSize, "Maximum request size in bytes"),
		ShutdownTimeout: fs.Duration("shutdown-timeout", def.Server.ShutdownTimeout, "Graceful shutdown timeout"),

		Title:     fs.String("title", def.App.Title, "Title shown by the view"),
		Seed:      fs.Int64("seed", def.App.Seed, "Seed for generated ids and uptimes (0 = secure random)"),
		SettleAll: fs.Bool("settle-all", def.App.SettleAll, "Clear the loading flag only after all initial requests settle"),
		LogLevel:  fs.String("log-level", def.Observability.Logging.Level, "Log level: debug, info, warn, error"),

		RateLimitEnabled: fs.Bool("rate-limit-enabled", def.Security.RateLimit.Enabled, "Enable rate limiting"),
		RateLimitRPS:     fs.Int("rate-limit-rps", def.Security.RateLimit.ActiveLimit().RequestsPerSecond, "Requests per second for the active rate limit strategy"),

		HotReload:         fs.Bool("hot-reload", def.HotReload.Enabled, "Reload the configuration file when it changes"),
		HotReloadDebounce: fs.Duration("hot-reload-debounce", def.HotReload.Debounce, "Debounce time for hot reload events"),

		TLSEnabled:  fs.Bool("tls-enabled", def.TLS.Enabled, "Serve over HTTPS"),
		TLSCertFile: fs.String("tls-cert-file", def.TLS.CertFile, "Path to the TLS certificate"),
		TLSKeyFile:  fs.String("tls-key-file", def.TLS.KeyFile, "Path to the TLS private key"),
	}
}
