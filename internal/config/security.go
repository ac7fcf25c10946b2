package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/leslieo2/go-user-demo/internal/constants"
)

// Rate limiting strategies
const (
	RateLimitStrategyIP     = "ip"
	RateLimitStrategyGlobal = "global"
)

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimit RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`
	Headers   SecurityHeaders `json:"headers" yaml:"headers"`
	CORS      CORSConfig      `json:"cors" yaml:"cors"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled         bool          `json:"enabled" yaml:"enabled"`
	Strategy        string        `json:"strategy" yaml:"strategy"` // "ip", "global"
	Global          *RateLimit    `json:"global" yaml:"global"`
	ByIP            *RateLimit    `json:"by_ip" yaml:"by_ip"`
	CleanupInterval time.Duration `json:"cleanup_interval" yaml:"cleanup_interval"`
	MaxCacheSize    int           `json:"max_cache_size" yaml:"max_cache_size"`
}

// RateLimit contains rate limit settings for a specific entity
type RateLimit struct {
	RequestsPerSecond int           `json:"requests_per_second" yaml:"requests_per_second"`
	BurstSize         int           `json:"burst_size" yaml:"burst_size"`
	WindowSize        time.Duration `json:"window_size" yaml:"window_size"`
}

// ActiveLimit returns the limit applied under the configured strategy.
func (r *RateLimitConfig) ActiveLimit() *RateLimit {
	if r.Strategy == RateLimitStrategyIP && r.ByIP != nil {
		return r.ByIP
	}
	return r.Global
}

// SetRequestsPerSecond changes the rate of the active limit, creating it with
// a burst of twice the rate when the strategy has none.
func (r *RateLimitConfig) SetRequestsPerSecond(rps int) {
	if limit := r.ActiveLimit(); limit != nil {
		limit.RequestsPerSecond = rps
		return
	}
	limit := &RateLimit{RequestsPerSecond: rps, BurstSize: 2 * rps, WindowSize: time.Minute}
	if r.Strategy == RateLimitStrategyIP {
		r.ByIP = limit
	} else {
		r.Global = limit
	}
}

// SecurityHeaders contains security headers configuration
type SecurityHeaders struct {
	Enabled               bool     `json:"enabled" yaml:"enabled"`
	HSTSMaxAge            int      `json:"hsts_max_age" yaml:"hsts_max_age"`
	ContentSecurityPolicy string   `json:"content_security_policy" yaml:"content_security_policy"`
	AllowedHosts          []string `json:"allowed_hosts" yaml:"allowed_hosts"`
}

// CORSConfig contains CORS configuration
type CORSConfig struct {
	Enabled          bool     `json:"enabled" yaml:"enabled"`
	AllowedOrigins   []string `json:"allowed_origins" yaml:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods" yaml:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers" yaml:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials" yaml:"allow_credentials"`
	MaxAge           int      `json:"max_age" yaml:"max_age"`
}

// DefaultSecurityConfig returns default security configuration
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		RateLimit: DefaultRateLimitConfig(),
		Headers:   DefaultSecurityHeaders(),
		CORS:      DefaultCORSConfig(),
	}
}

// DefaultRateLimitConfig returns default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:  false,
		Strategy: RateLimitStrategyIP,
		Global: &RateLimit{
			RequestsPerSecond: 100,
			BurstSize:         200,
			WindowSize:        time.Minute,
		},
		ByIP: &RateLimit{
			RequestsPerSecond: 60,
			BurstSize:         120,
			WindowSize:        time.Minute,
		},
		CleanupInterval: constants.RateLimitCleanupInterval,
		MaxCacheSize:    constants.RateLimitMaxCacheSize,
	}
}

// DefaultSecurityHeaders returns default security headers
func DefaultSecurityHeaders() SecurityHeaders {
	return SecurityHeaders{
		Enabled:    true,
		HSTSMaxAge: 31536000, // 1 year
	}
}

// DefaultCORSConfig returns default CORS configuration
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		Enabled:          true,
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{constants.MethodGET, constants.MethodPOST, constants.MethodOPTIONS},
		AllowedHeaders:   []string{constants.HeaderContentType, constants.HeaderAccept, constants.HeaderXRequestedWith},
		AllowCredentials: false,
		MaxAge:           86400, // 24 hours
	}
}

// Validate validates the security configuration
func (s *SecurityConfig) Validate() error {
	var errs []error

	if err := s.RateLimit.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("rate limit config validation failed: %w", err))
	}
	if err := s.Headers.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("security headers config validation failed: %w", err))
	}
	if err := s.CORS.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("CORS config validation failed: %w", err))
	}

	return errors.Join(errs...)
}

// Validate validates the rate limit configuration
func (r *RateLimitConfig) Validate() error {
	if !r.Enabled {
		return nil
	}

	var errs []error
	if r.Strategy != RateLimitStrategyIP && r.Strategy != RateLimitStrategyGlobal {
		errs = append(errs, errors.New("strategy must be one of: ip, global"))
	}
	if r.Global == nil {
		errs = append(errs, errors.New("global rate limit is required when rate limiting is enabled"))
	} else if err := r.Global.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("global rate limit validation failed: %w", err))
	}
	if r.ByIP != nil {
		if err := r.ByIP.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("by_ip rate limit validation failed: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Validate validates the CORS configuration
func (c *CORSConfig) Validate() error {
	if c.Enabled {
		if len(c.AllowedOrigins) == 0 {
			return fmt.Errorf("allowed_origins must not be empty")
		}
		if len(c.AllowedMethods) == 0 {
			return fmt.Errorf("allowed_methods must not be empty")
		}
	}
	return nil
}

// Validate validates the security headers configuration
func (h *SecurityHeaders) Validate() error {
	if h.Enabled && h.HSTSMaxAge < 0 {
		return fmt.Errorf("hsts_max_age must be non-negative")
	}
	return nil
}

// Validate validates the rate limit configuration for a specific entity
func (l *RateLimit) Validate() error {
	if l.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests_per_second must be positive")
	}
	if l.BurstSize <= 0 {
		return fmt.Errorf("burst_size must be positive")
	}
	if l.WindowSize <= 0 {
		return fmt.Errorf("window_size must be positive")
	}
	return nil
}
