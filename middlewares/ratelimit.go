package middlewares

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/dmitrymomot/dlproxy/internal"
)

// Rate limiter defaults.
const (
	DefaultRateLimitRPS   = 2
	DefaultRateLimitBurst = 8

	defaultLimiterCacheSize = 10_000
	defaultLimiterIdleTTL   = 10 * time.Minute
)

// RateLimitConfig configures the per-client rate limiter.
type RateLimitConfig struct {
	// KeyFunc identifies the client. Defaults to the remote IP.
	KeyFunc func(r *http.Request) string
	// RPS is the sustained request rate per client. Zero or less disables limiting.
	RPS float64
	// Burst is the bucket size.
	Burst int
	// CacheSize bounds the number of tracked clients.
	CacheSize int
	// IdleTTL bounds how long a client's bucket is kept.
	IdleTTL time.Duration
}

// RateLimitOption configures RateLimitConfig.
type RateLimitOption func(*RateLimitConfig)

// WithRateLimitKey sets the function identifying a client.
func WithRateLimitKey(fn func(r *http.Request) string) RateLimitOption {
	return func(cfg *RateLimitConfig) {
		if fn != nil {
			cfg.KeyFunc = fn
		}
	}
}

// WithRateLimitCache bounds the number of tracked clients and how long each bucket lives.
func WithRateLimitCache(size int, idle time.Duration) RateLimitOption {
	return func(cfg *RateLimitConfig) {
		if size > 0 {
			cfg.CacheSize = size
		}
		if idle > 0 {
			cfg.IdleTTL = idle
		}
	}
}

// RateLimit returns net/http middleware applying a token bucket per client IP.
// Requests over the limit get 429 with a Retry-After header.
// rps <= 0 returns a pass-through middleware.
func RateLimit(rps float64, burst int, opts ...RateLimitOption) func(http.Handler) http.Handler {
	cfg := &RateLimitConfig{
		RPS:       rps,
		Burst:     burst,
		KeyFunc:   remoteIP,
		CacheSize: defaultLimiterCacheSize,
		IdleTTL:   defaultLimiterIdleTTL,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.RPS <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}

	limiters := &limiterSet{
		cache: expirable.NewLRU[string, *rate.Limiter](cfg.CacheSize, nil, cfg.IdleTTL),
		limit: rate.Limit(cfg.RPS),
		burst: cfg.Burst,
	}
	retryAfter := strconv.Itoa(max(1, int(1/cfg.RPS)))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiters.get(cfg.KeyFunc(r)).Allow() {
				w.Header().Set("Retry-After", retryAfter)
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type limiterSet struct {
	cache *expirable.LRU[string, *rate.Limiter]
	limit rate.Limit
	burst int
	mu    sync.Mutex
}

func (s *limiterSet) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.cache.Get(key); ok {
		return l
	}
	l := rate.NewLimiter(s.limit, s.burst)
	s.cache.Add(key, l)
	return l
}

func remoteIP(r *http.Request) string {
	return internal.ClientIP(r.RemoteAddr)
}
