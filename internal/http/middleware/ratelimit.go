package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/salon-voice-agent/pkg/logging"
)

// RateLimiter is a fixed-window per-caller limiter backed by Redis, so the
// limit holds across multiple gateway instances. It fails open: a dead
// Redis must never take the voice line down with it.
type RateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	logger *logging.Logger
}

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// NewRateLimiter creates a limiter allowing limit requests per window.
func NewRateLimiter(rdb *redis.Client, limit int, window time.Duration, logger *logging.Logger) *RateLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RateLimiter{rdb: rdb, limit: limit, window: window, logger: logger}
}

// Middleware rejects callers over the limit with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		// Prefer X-Real-Ip set by chi's RealIP middleware.
		if xri := r.Header.Get("X-Real-Ip"); xri != "" {
			ip = xri
		}

		count, err := rl.incr(r.Context(), "ratelimit:in-call:"+ip)
		if err != nil {
			rl.logger.Warn("rate limiter unavailable, failing open", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if count > int64(rl.limit) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) incr(ctx context.Context, key string) (int64, error) {
	res, err := fixedWindowScript.Run(ctx, rl.rdb, []string{key}, rl.window.Milliseconds()).Result()
	if err != nil {
		return 0, err
	}
	switch v := res.(type) {
	case int64:
		return v, nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("middleware: unexpected script result type %T", res)
	}
}
