package constants

import "time"

// Environment variable constants
const (
	EnvHost              = "USER_DEMO_HOST"
	EnvPort              = "USER_DEMO_PORT"
	EnvMetricsPort       = "USER_DEMO_METRICS_PORT"
	EnvReadTimeout       = "USER_DEMO_READ_TIMEOUT"
	EnvWriteTimeout      = "USER_DEMO_WRITE_TIMEOUT"
	EnvIdleTimeout       = "USER_DEMO_IDLE_TIMEOUT"
	EnvMaxRequestSize    = "USER_DEMO_MAX_REQUEST_SIZE"
	EnvShutdownTimeout   = "USER_DEMO_SHUTDOWN_TIMEOUT"
	EnvTitle             = "USER_DEMO_TITLE"
	EnvSeed              = "USER_DEMO_SEED"
	EnvSettleAll         = "USER_DEMO_SETTLE_ALL"
	EnvLogLevel          = "USER_DEMO_LOG_LEVEL"
	EnvLogFormat         = "USER_DEMO_LOG_FORMAT"
	EnvHotReload         = "USER_DEMO_HOT_RELOAD"
	EnvHotReloadDebounce = "USER_DEMO_HOT_RELOAD_DEBOUNCE"
	EnvTLSEnabled        = "USER_DEMO_TLS_ENABLED"
	EnvTLSCertFile       = "USER_DEMO_TLS_CERT_FILE"
	EnvTLSKeyFile        = "USER_DEMO_TLS_KEY_FILE"
)

// HTTP method constants
const (
	MethodGET     = "GET"
	MethodPOST    = "POST"
	MethodOPTIONS = "OPTIONS"
)

// HTTP header constants
const (
	HeaderContentType    = "Content-Type"
	HeaderAccept         = "Accept"
	HeaderXRequestedWith = "X-Requested-With"
	HeaderXForwardedFor  = "X-Forwarded-For"
	HeaderXRealIP        = "X-Real-IP"
	HeaderXRequestID     = "X-Request-ID"
)

// Content type constants
const (
	ContentTypeJSON = "application/json"
)

// Rate limiting headers
const (
	HeaderXRateLimitLimit     = "X-RateLimit-Limit"
	HeaderXRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderXRateLimitReset     = "X-RateLimit-Reset"
	HeaderRetryAfter          = "Retry-After"
)

// Rate limiter internal constants
const (
	// RateLimitCleanupInterval is the interval for cleaning up rate limit cache
	RateLimitCleanupInterval = 5 * time.Minute
	// RateLimitMaxCacheSize is the maximum size of the rate limit cache
	RateLimitMaxCacheSize = 10000
)

// Error code constants
const (
	ErrorCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrorCodeBadRequest        = "BAD_REQUEST"
)

// Path constants
const (
	PathView       = "/"
	PathSampleUser = "/users/sample"
	PathAPIUsers   = "/api/users"
	PathAPIUser    = "/api/users/{id}"
	PathAPIHealth  = "/api/health"
	PathHealth     = "/health"
	PathReady      = "/ready"
	PathMetrics    = "/metrics"
	PathDocs       = "/docs"
)

// Query parameter constants
const (
	QueryParamDelay = "__delay"
)

// MaxDelayDuration caps the simulated latency a client may request.
const MaxDelayDuration = 30 * time.Second

// Demo data constants
const (
	DefaultTitle      = "Go User Demo"
	HealthMessage     = "API is running successfully!"
	APIVersion        = "1.0.0"
	HealthyStatus     = "healthy"
	UptimeUpperBound  = 1000
	GeneratedIDOffset = 100
	GeneratedIDRange  = 1000
)
