package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

// KeyFunc derives the rate limit bucket for a request.
type KeyFunc func(r *http.Request) string

// ByClientIP buckets requests by caller address.
func ByClientIP(r *http.Request) string {
	return clientIP(r)
}

// ByURLParam buckets requests by caller address and the named chi URL
// parameter, so each reading session of a caller gets its own window.
func ByURLParam(name string) KeyFunc {
	return func(r *http.Request) string {
		if v := chi.URLParam(r, name); v != "" {
			return clientIP(r) + ":" + v
		}
		return clientIP(r)
	}
}

// RateLimiter is a sliding-window limiter over Redis sorted sets.
// Keys look like "ratelimit:{scope}:{bucket}".
type RateLimiter struct {
	client  redis.Cmdable
	prefix  string
	limit   int
	window  time.Duration
	keyFunc KeyFunc
}

// NewRateLimiter allows maxReqs requests per windowSec seconds and
// buckets by client IP unless WithKey is applied.
func NewRateLimiter(client redis.Cmdable, scope string, maxReqs, windowSec int) *RateLimiter {
	return &RateLimiter{
		client:  client,
		prefix:  "ratelimit:" + scope + ":",
		limit:   maxReqs,
		window:  time.Duration(windowSec) * time.Second,
		keyFunc: ByClientIP,
	}
}

// WithKey replaces the bucket function.
func (rl *RateLimiter) WithKey(fn KeyFunc) *RateLimiter {
	rl.keyFunc = fn
	return rl
}

// Middleware rejects requests over the limit with 429. Redis failures let
// the request through.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bucket := rl.keyFunc(r)

		allowed, err := rl.allow(r.Context(), rl.prefix+bucket)
		if err != nil {
			slog.Warn("rate limiter unavailable, allowing request", "error", err, "bucket", bucket)
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window/time.Second)))
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"The cards need a moment to settle. Please slow down."}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(ctx context.Context, key string) (bool, error) {
	now := time.Now()
	cutoff := now.Add(-rl.window).UnixMilli()

	pipe := rl.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(cutoff, 10))
	count := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMilli()), Member: strconv.FormatInt(now.UnixNano(), 10)})
	pipe.Expire(ctx, key, rl.window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return count.Val() < int64(rl.limit), nil
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
