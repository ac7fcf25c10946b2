package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/leslieo2/go-user-demo/internal/constants"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration with precedence:
// 1. Explicitly set CLI flags (highest priority)
// 2. Environment variables
// 3. Configuration file values
// 4. Default configuration values (lowest priority)
func LoadConfig(configFile string, cliFlags *CLIFlags) (*Config, error) {
	config := DefaultConfig()

	if configFile != "" {
		absPath, err := loadFromFile(configFile, config)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		config.ConfigFile = absPath
	}

	loadFromEnv(config)

	if cliFlags != nil {
		overrideWithCLI(config, cliFlags)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// CLIFlags contains CLI flag values that can override configuration.
// Only flags marked as changed in Set are applied.
type CLIFlags struct {
	Set *pflag.FlagSet

	Host              *string
	Port              *string
	MetricsPort       *string
	ReadTimeout       *time.Duration
	WriteTimeout      *time.Duration
	IdleTimeout       *time.Duration
	MaxRequestSize    *int64
	ShutdownTimeout   *time.Duration
	Title             *string
	Seed              *int64
	SettleAll         *bool
	LogLevel          *string
	RateLimitEnabled  *bool
	RateLimitRPS      *int
	HotReload         *bool
	HotReloadDebounce *time.Duration
	TLSEnabled        *bool
	TLSCertFile       *string
	TLSKeyFile        *string
}

func (f *CLIFlags) changed(name string) bool {
	if f.Set == nil {
		return false
	}
	flag := f.Set.Lookup(name)
	return flag != nil && flag.Changed
}

// loadFromFile decodes a YAML or JSON file over config and returns the absolute path
func loadFromFile(filePath string, config *Config) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for %s: %w", filePath, err)
	}
	absPath = filepath.Clean(absPath)

	data, err := os.ReadFile(absPath) // #nosec G304 - operator supplied path
	if err != nil {
		return "", fmt.Errorf("failed to read config file %s: %w", absPath, err)
	}

	ext := filepath.Ext(absPath)
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	case ".json":
		err = json.Unmarshal(data, config)
	default:
		return "", fmt.Errorf("unsupported config file format: %s", ext)
	}
	if err != nil {
		return "", fmt.Errorf("failed to parse config file %s: %w", absPath, err)
	}

	return absPath, nil
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(config *Config) {
	if val := os.Getenv(constants.EnvHost); val != "" {
		config.Server.Host = val
	}
	if val := os.Getenv(constants.EnvPort); val != "" {
		config.Server.Port = val
	}
	if val := os.Getenv(constants.EnvMetricsPort); val != "" {
		config.Server.MetricsPort = val
	}
	envDuration(constants.EnvReadTimeout, &config.Server.ReadTimeout)
	envDuration(constants.EnvWriteTimeout, &config.Server.WriteTimeout)
	envDuration(constants.EnvIdleTimeout, &config.Server.IdleTimeout)
	envDuration(constants.EnvShutdownTimeout, &config.Server.ShutdownTimeout)
	if val := os.Getenv(constants.EnvMaxRequestSize); val != "" {
		if size, err := strconv.ParseInt(val, 10, 64); err == nil {
			config.Server.MaxRequestSize = size
		}
	}

	if val := os.Getenv(constants.EnvTitle); val != "" {
		config.App.Title = val
	}
	if val := os.Getenv(constants.EnvSeed); val != "" {
		if seed, err := strconv.ParseInt(val, 10, 64); err == nil {
			config.App.Seed = seed
		}
	}
	envBool(constants.EnvSettleAll, &config.App.SettleAll)

	if val := os.Getenv(constants.EnvLogLevel); val != "" {
		config.Observability.Logging.Level = val
	}
	if val := os.Getenv(constants.EnvLogFormat); val != "" {
		config.Observability.Logging.Format = val
	}

	envBool(constants.EnvHotReload, &config.HotReload.Enabled)
	envDuration(constants.EnvHotReloadDebounce, &config.HotReload.Debounce)

	envBool(constants.EnvTLSEnabled, &config.TLS.Enabled)
	if val := os.Getenv(constants.EnvTLSCertFile); val != "" {
		config.TLS.CertFile = val
	}
	if val := os.Getenv(constants.EnvTLSKeyFile); val != "" {
		config.TLS.KeyFile = val
	}
}

func envDuration(key string, dst *time.Duration) {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			*dst = duration
		}
	}
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(key); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			*dst = enabled
		}
	}
}

// overrideWithCLI overrides configuration with CLI flag values
// Only explicitly set CLI flags override other configuration sources
func overrideWithCLI(config *Config, flags *CLIFlags) {
	if flags.Host != nil && flags.changed("host") {
		config.Server.Host = *flags.Host
	}
	if flags.Port != nil && flags.changed("port") {
		config.Server.Port = *flags.Port
	}
	if flags.MetricsPort != nil && flags.changed("metrics-port") {
		config.Server.MetricsPort = *flags.MetricsPort
	}
	if flags.ReadTimeout != nil && flags.changed("read-timeout") {
		config.Server.ReadTimeout = *flags.ReadTimeout
	}
	if flags.WriteTimeout != nil && flags.changed("write-timeout") {
		config.Server.WriteTimeout = *flags.WriteTimeout
	}
	if flags.IdleTimeout != nil && flags.changed("idle-timeout") {
		config.Server.IdleTimeout = *flags.IdleTimeout
	}
	if flags.MaxRequestSize != nil && flags.changed("max-request-size") {
		config.Server.MaxRequestSize = *flags.MaxRequestSize
	}
	if flags.ShutdownTimeout != nil && flags.changed("shutdown-timeout") {
		config.Server.ShutdownTimeout = *flags.ShutdownTimeout
	}

	if flags.Title != nil && flags.changed("title") {
		config.App.Title = *flags.Title
	}
	if flags.Seed != nil && flags.changed("seed") {
		config.App.Seed = *flags.Seed
	}
	if flags.SettleAll != nil && flags.changed("settle-all") {
		config.App.SettleAll = *flags.SettleAll
	}
	if flags.LogLevel != nil && flags.changed("log-level") {
		config.Observability.Logging.Level = *flags.LogLevel
	}

	if flags.RateLimitEnabled != nil && flags.changed("rate-limit-enabled") {
		config.Security.RateLimit.Enabled = *flags.RateLimitEnabled
	}
	if flags.RateLimitRPS != nil && flags.changed("rate-limit-rps") {
		config.Security.RateLimit.SetRequestsPerSecond(*flags.RateLimitRPS)
	}

	if flags.HotReload != nil && flags.changed("hot-reload") {
		config.HotReload.Enabled = *flags.HotReload
	}
	if flags.HotReloadDebounce != nil && flags.changed("hot-reload-debounce") {
		config.HotReload.Debounce = *flags.HotReloadDebounce
	}

	if flags.TLSEnabled != nil && flags.changed("tls-enabled") {
		config.TLS.Enabled = *flags.TLSEnabled
	}
	if flags.TLSCertFile != nil && flags.changed("tls-cert-file") {
		config.TLS.CertFile = *flags.TLSCertFile
	}
	if flags.TLSKeyFile != nil && flags.changed("tls-key-file") {
		config.TLS.KeyFile = *flags.TLSKeyFile
	}
}
