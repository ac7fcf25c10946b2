// Package security provides request throttling for the HTTP host.
package security

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/leslieo2/go-user-demo/internal/config"
	"github.com/leslieo2/go-user-demo/internal/constants"
)

const globalIdentifier = "global"

// RateLimiter keeps one token bucket per client identifier in an expiring cache.
type RateLimiter struct {
	limiters *cache.Cache
	config   *config.RateLimitConfig
	clock    clockwork.Clock
	logger   *zap.Logger
	stop     chan struct{}
}

// RateLimitStatus describes the bucket state reported in response headers.
type RateLimitStatus struct {
	Limit      int           `json:"limit"`
	Remaining  int           `json:"remaining"`
	Reset      time.Time     `json:"reset"`
	RetryAfter time.Duration `json:"retry_after,omitempty"`
}

// Option configures a RateLimiter.
type Option func(*RateLimiter)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(rl *RateLimiter) { rl.clock = clock }
}

// WithLogger sets the logger used for rejected requests.
func WithLogger(logger *zap.Logger) Option {
	return func(rl *RateLimiter) { rl.logger = logger }
}

// NewRateLimiter creates a limiter. Call Close to stop the eviction loop.
func NewRateLimiter(cfg *config.RateLimitConfig, opts ...Option) *RateLimiter {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = constants.RateLimitCleanupInterval
	}
	if cfg.MaxCacheSize <= 0 {
		cfg.MaxCacheSize = constants.RateLimitMaxCacheSize
	}

	rl := &RateLimiter{
		limiters: cache.New(cfg.CleanupInterval, cfg.CleanupInterval*2),
		config:   cfg,
		clock:    clockwork.NewRealClock(),
		logger:   zap.NewNop(),
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(rl)
	}

	if cfg.Enabled {
		go rl.periodicCleanup()
	}
	return rl
}

// Close stops the background eviction loop.
func (rl *RateLimiter) Close() {
	select {
	case <-rl.stop:
	default:
		close(rl.stop)
	}
}

// periodicCleanup evicts random entries once the cache grows past MaxCacheSize.
func (rl *RateLimiter) periodicCleanup() {
	ticker := rl.clock.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.Chan():
			rl.evict()
		}
	}
}

func (rl *RateLimiter) evict() int {
	maxSize := rl.config.MaxCacheSize
	current := rl.limiters.ItemCount()
	if current <= maxSize {
		return 0
	}

	// drop an extra 10% so cleanup does not run on every tick
	toRemove := current - maxSize + maxSize/10

	items := rl.limiters.Items()
	keys := make([]string, 0, len(items))
	for key := range items {
		keys = append(keys, key)
	}
	rand.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })

	removed := 0
	for ; removed < toRemove && removed < len(keys); removed++ {
		rl.limiters.Delete(keys[removed])
	}
	return removed
}

func (rl *RateLimiter) limiterFor(identifier string, limit *config.RateLimit) *rate.Limiter {
	if item, found := rl.limiters.Get(identifier); found {
		return item.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(rate.Limit(limit.RequestsPerSecond), limit.BurstSize)
	rl.limiters.Set(identifier, limiter, cache.DefaultExpiration)
	return limiter
}

// Allow consumes one token for identifier and reports whether the request may proceed.
func (rl *RateLimiter) Allow(identifier string, limit *config.RateLimit) bool {
	if !rl.config.Enabled {
		return true
	}
	return rl.limiterFor(identifier, limit).AllowN(rl.clock.Now(), 1)
}

// Status reports the bucket state for identifier without consuming a token.
func (rl *RateLimiter) Status(identifier string, limit *config.RateLimit) *RateLimitStatus {
	now := rl.clock.Now()
	if !rl.config.Enabled {
		return &RateLimitStatus{
			Limit:     limit.BurstSize,
			Remaining: limit.BurstSize,
			Reset:     now.Add(limit.WindowSize),
		}
	}

	limiter := rl.limiterFor(identifier, limit)
	tokens := limiter.TokensAt(now)
	remaining := int(math.Max(0, math.Floor(tokens)))

	status := &RateLimitStatus{
		Limit:     limit.BurstSize,
		Remaining: remaining,
		Reset:     now.Add(limit.WindowSize),
	}
	if tokens < 1 {
		missing := 1 - tokens
		status.RetryAfter = time.Duration(missing / float64(limit.RequestsPerSecond) * float64(time.Second))
		if status.RetryAfter < time.Second {
			status.RetryAfter = time.Second
		}
	}
	return status
}

// Middleware throttles requests according to the configured strategy.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.config.Enabled || rl.shouldSkipRateLimit(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		identifier := rl.getIdentifier(r)
		limit := rl.getRateLimit()

		if !rl.Allow(identifier, limit) {
			status := rl.Status(identifier, limit)
			rl.writeHeaders(w, status)
			if status.RetryAfter > 0 {
				w.Header().Set(constants.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(status.RetryAfter.Seconds()))))
			}

			rl.logger.Warn("Rate limit exceeded",
				zap.String("identifier", identifier),
				zap.String("path", r.URL.Path))

			w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error":       constants.ErrorCodeRateLimitExceeded,
				"message":     fmt.Sprintf("Rate limit exceeded. Try again in %v", status.RetryAfter),
				"retry_after": int(math.Ceil(status.RetryAfter.Seconds())),
			})
			return
		}

		rl.writeHeaders(w, rl.Status(identifier, limit))
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) writeHeaders(w http.ResponseWriter, status *RateLimitStatus) {
	w.Header().Set(constants.HeaderXRateLimitLimit, strconv.Itoa(status.Limit))
	w.Header().Set(constants.HeaderXRateLimitRemaining, strconv.Itoa(status.Remaining))
	w.Header().Set(constants.HeaderXRateLimitReset, strconv.FormatInt(status.Reset.Unix(), 10))
}

func (rl *RateLimiter) getIdentifier(r *http.Request) string {
	if rl.config.Strategy == config.RateLimitStrategyGlobal {
		return globalIdentifier
	}
	return "ip:" + ClientIP(r)
}

// ClientIP returns the originating address, honouring proxy headers.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get(constants.HeaderXForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get(constants.HeaderXRealIP); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (rl *RateLimiter) getRateLimit() *config.RateLimit {
	return rl.config.ActiveLimit()
}

func (rl *RateLimiter) shouldSkipRateLimit(path string) bool {
	switch path {
	case constants.PathHealth, constants.PathReady, constants.PathMetrics:
		return true
	}
	return false
}
