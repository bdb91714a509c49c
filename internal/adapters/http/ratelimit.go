package httpadapter

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"launchaudit/internal/ports"
)

// Audit enqueues are expensive (a browser session plus two API calls), so
// they are rate limited per client IP with a fixed window.
const (
	auditRateLimit  = 10
	auditRateWindow = time.Hour
)

// rateLimiter is a fixed-window limiter over an injected store, keyed by
// client IP. State lives in the store, never in a process-global map, so the
// limit holds across instances and tests control the clock.
type rateLimiter struct {
	store  ports.Store
	clock  ports.Clock
	limit  int64
	window time.Duration
}

func newRateLimiter(store ports.Store, clock ports.Clock, limit int64, window time.Duration) *rateLimiter {
	if clock == nil {
		clock = ports.ClockFunc(time.Now)
	}
	return &rateLimiter{store: store, clock: clock, limit: limit, window: window}
}

func (l *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "ratelimit:audits:" + r.RemoteAddr
		count, resetAt, err := l.store.Incr(r.Context(), key, l.window)
		if err != nil {
			// A broken store should not take the endpoint down.
			slog.Warn("rate limit store unavailable", "err", err)
			next.ServeHTTP(w, r)
			return
		}
		if count > l.limit {
			retryIn := math.Ceil(resetAt.Sub(l.clock.Now()).Seconds())
			if retryIn < 0 {
				retryIn = 0
			}
			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", retryIn))
			writeError(w, http.StatusTooManyRequests,
				fmt.Sprintf("Rate limit exceeded. Try again in %.0f seconds.", retryIn))
			return
		}
		next.ServeHTTP(w, r)
	})
}
