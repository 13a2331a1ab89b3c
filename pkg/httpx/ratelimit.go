package httpx

import (
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/aussiebroadwan/budadmin/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines the outbound rate limiting parameters.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed in the time window.
	// Zero disables limiting.
	RequestsPerWindow int
	// Window is the time window for rate limiting
	Window time.Duration
	// Burst allows for temporary bursts above the rate limit
	Burst int
}

// DefaultRateLimit keeps bulk CLI operations (seeding, scripted deletes) from
// hammering the catalog API. Override with ADMIN_RATELIMIT_* variables.
var DefaultRateLimit = RateLimitConfig{
	RequestsPerWindow: 600,
	Window:            time.Minute,
	Burst:             20,
}

// Enabled reports whether the config limits anything.
func (c RateLimitConfig) Enabled() bool {
	return c.RequestsPerWindow > 0 && c.Window > 0
}

// ParseRateLimitFromEnv reads rate limit configuration from environment variables.
// Environment variables follow the pattern: {prefix}_RATELIMIT_{field}
// For example: ADMIN_RATELIMIT_REQUESTS, ADMIN_RATELIMIT_WINDOW_SEC, ADMIN_RATELIMIT_BURST
func ParseRateLimitFromEnv(prefix string, defaultConfig RateLimitConfig) RateLimitConfig {
	config := defaultConfig

	// Zero is allowed here, it switches limiting off
	if val := os.Getenv(prefix + "_RATELIMIT_REQUESTS"); val != "" {
		if requests, err := strconv.Atoi(val); err == nil && requests >= 0 {
			config.RequestsPerWindow = requests
		}
	}

	if val := os.Getenv(prefix + "_RATELIMIT_WINDOW_SEC"); val != "" {
		if windowSec, err := strconv.Atoi(val); err == nil && windowSec > 0 {
			config.Window = time.Duration(windowSec) * time.Second
		}
	}

	if val := os.Getenv(prefix + "_RATELIMIT_BURST"); val != "" {
		if burst, err := strconv.Atoi(val); err == nil && burst > 0 {
			config.Burst = burst
		}
	}

	return config
}

// rateLimiter holds one limiter per destination host.
type rateLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func (rl *rateLimiter) getLimiter(host string) *rate.Limiter {
	if limiter, ok := rl.limiters.Load(host); ok {
		return limiter.(*rate.Limiter)
	}

	limiter := rate.NewLimiter(rl.rate, rl.burst)
	actual, _ := rl.limiters.LoadOrStore(host, limiter)
	return actual.(*rate.Limiter)
}

// RateLimitTransport delays outbound requests so no host sees more than the
// configured rate. Waiting honours the request context, so a cancelled
// request returns the context error instead of queueing forever.
func RateLimitTransport(config RateLimitConfig, next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if !config.Enabled() {
		return next
	}

	burst := max(config.Burst, 1)
	return &rateLimitTransport{
		next: next,
		rl: &rateLimiter{
			rate:  rate.Limit(float64(config.RequestsPerWindow) / config.Window.Seconds()),
			burst: burst,
		},
	}
}

type rateLimitTransport struct {
	next http.RoundTripper
	rl   *rateLimiter
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	limiter := t.rl.getLimiter(req.URL.Host)

	if !limiter.Allow() {
		start := time.Now()
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
		slogx.FromContext(ctx).Debug("rate limit: request delayed",
			"host", req.URL.Host,
			"path", req.URL.Path,
			"waited_ms", time.Since(start).Milliseconds(),
		)
	}

	return t.next.RoundTrip(req)
}
