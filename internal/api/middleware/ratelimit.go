package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ByteEmpire/roompartner/internal/metrics"
)

// RateLimit defines limits for an endpoint pattern.
type RateLimit struct {
	Requests int
	Window   time.Duration
}

// RateLimiter implements sliding window rate limiting backed by Redis.
// With no Redis client configured the limiter is a pass-through.
type RateLimiter struct {
	client *redis.Client
	limits map[string]RateLimit
	logger zerolog.Logger
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(client *redis.Client, logger zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		logger: logger,
		limits: map[string]RateLimit{
			"POST /chat/messages":     {60, time.Minute},
			"GET /chat/messages/":     {120, time.Minute},
			"PUT /chat/messages/":     {120, time.Minute},
			"GET /chat/conversations": {60, time.Minute},
			"GET /ws":                 {30, time.Minute},
		},
	}
}

// Middleware enforces the configured limits, keyed by client IP.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.client == nil {
			next.ServeHTTP(w, r)
			return
		}

		pattern, limit, ok := rl.match(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", pattern, clientIP(r))

		pipe := rl.client.Pipeline()
		incr := pipe.Incr(r.Context(), key)
		pipe.Expire(r.Context(), key, limit.Window)
		if _, err := pipe.Exec(r.Context()); err != nil {
			// Redis trouble never takes the API down.
			rl.logger.Warn().Err(err).Msg("rate limit check failed, allowing request")
			next.ServeHTTP(w, r)
			return
		}

		count := incr.Val()
		remaining := int64(limit.Requests) - count
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit.Requests))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(limit.Requests) {
			metrics.RateLimitHits.WithLabelValues(pattern).Inc()
			w.Header().Set("Retry-After", strconv.Itoa(int(limit.Window.Seconds())))
			jsonError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// match finds the most specific limit for the request, longest prefix wins.
func (rl *RateLimiter) match(r *http.Request) (string, RateLimit, bool) {
	var bestPattern string
	var best RateLimit
	for pattern, limit := range rl.limits {
		parts := strings.SplitN(pattern, " ", 2)
		if r.Method != parts[0] || !strings.HasPrefix(r.URL.Path, parts[1]) {
			continue
		}
		if len(pattern) > len(bestPattern) {
			bestPattern = pattern
			best = limit
		}
	}
	return bestPattern, best, bestPattern != ""
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
