package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leslieo2/go-user-demo/internal/constants"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_DefaultsOnly(t *testing.T) {
	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	want := DefaultConfig()
	assert.Equal(t, want, cfg)
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	path := writeConfigFile(t, "demo.yaml", `
server:
  port: "8081"
  read_timeout: 5s
app:
  title: From File
  seed: 7
  settle_all: true
observability:
  logging:
    level: debug
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "From File", cfg.App.Title)
	assert.Equal(t, int64(7), cfg.App.Seed)
	assert.True(t, cfg.App.SettleAll)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
	// untouched values keep their defaults
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "json", cfg.Observability.Logging.Format)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoadConfig_JSONFile(t *testing.T) {
	path := writeConfigFile(t, "demo.json", `{"server": {"port": "8082"}, "app": {"title": "JSON"}}`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "8082", cfg.Server.Port)
	assert.Equal(t, "JSON", cfg.App.Title)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{
			name: "file not found",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.yaml") },
		},
		{
			name: "malformed yaml",
			path: func(t *testing.T) string { return writeConfigFile(t, "bad.yaml", `server: {port: "8081"`) },
		},
		{
			name: "unsupported extension",
			path: func(t *testing.T) string { return writeConfigFile(t, "demo.toml", `port = 1`) },
		},
		{
			name: "invalid values",
			path: func(t *testing.T) string { return writeConfigFile(t, "demo.yaml", `app: {title: ""}`) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.path(t), nil)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "demo.yaml", `server: {port: "8081"}`)
	t.Setenv(constants.EnvPort, "8083")
	t.Setenv(constants.EnvTitle, "From Env")
	t.Setenv(constants.EnvSettleAll, "true")
	t.Setenv(constants.EnvShutdownTimeout, "3s")
	t.Setenv(constants.EnvSeed, "not-a-number")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "8083", cfg.Server.Port)
	assert.Equal(t, "From Env", cfg.App.Title)
	assert.True(t, cfg.App.SettleAll)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, int64(0), cfg.App.Seed, "unparsable values are ignored")
}

func TestLoadConfig_OnlyChangedFlagsOverride(t *testing.T) {
	t.Setenv(constants.EnvPort, "8083")
	t.Setenv(constants.EnvHost, "0.0.0.0")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags := RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--port", "8084", "--rate-limit-rps", "5", "--rate-limit-enabled"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, "8084", cfg.Server.Port, "explicit flag wins over env")
	assert.Equal(t, "0.0.0.0", cfg.Server.Host, "unset flag keeps env value")
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, 5, cfg.Security.RateLimit.ByIP.RequestsPerSecond, "rps applies to the default ip strategy")
	assert.Equal(t, 100, cfg.Security.RateLimit.Global.RequestsPerSecond)
}

func TestLoadConfig_RateLimitRPSFollowsStrategy(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		limit    func(*Config) *RateLimit
	}{
		{"ip", RateLimitStrategyIP, func(c *Config) *RateLimit { return c.Security.RateLimit.ByIP }},
		{"global", RateLimitStrategyGlobal, func(c *Config) *RateLimit { return c.Security.RateLimit.Global }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, "config.yaml", "security:\n  rate_limit:\n    strategy: "+tt.strategy+"\n")

			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			flags := RegisterFlags(fs)
			require.NoError(t, fs.Parse([]string{"--rate-limit-rps", "7"}))

			cfg, err := LoadConfig(path, flags)
			require.NoError(t, err)
			assert.Equal(t, 7, tt.limit(cfg).RequestsPerSecond)
			assert.Same(t, tt.limit(cfg), cfg.Security.RateLimit.ActiveLimit())
		})
	}
}

func TestRateLimitConfig_SetRequestsPerSecondCreatesMissingLimit(t *testing.T) {
	r := RateLimitConfig{Strategy: RateLimitStrategyIP}
	r.SetRequestsPerSecond(4)
	require.NotNil(t, r.ByIP)
	assert.Equal(t, 4, r.ByIP.RequestsPerSecond)
	assert.Equal(t, 8, r.ByIP.BurstSize)
	assert.Nil(t, r.Global)
}

func TestCLIFlags_NilSetChangesNothing(t *testing.T) {
	port := "9999"
	cfg, err := LoadConfig("", &CLIFlags{Port: &port})
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
}
