package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// RateLimiter counts requests per client IP in fixed windows.
// Counters expire with their window, so idle clients cost nothing.
type RateLimiter struct {
	limit  int
	window time.Duration

	mu     sync.Mutex
	counts *cache.Cache
}

type rateWindow struct {
	count int
	reset time.Time
}

// NewRateLimiter allows limit requests per window for each client IP.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: window,
		counts: cache.New(window, 2*window),
	}
}

// Allow consumes one request for key and reports whether it fits the limit,
// plus the time until the current window resets.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.current(key, now)
	if !ok {
		rl.counts.Set(key, &rateWindow{count: 1, reset: now.Add(rl.window)}, rl.window)
		return true, rl.window
	}
	if w.count >= rl.limit {
		return false, w.reset.Sub(now)
	}
	w.count++
	return true, w.reset.Sub(now)
}

func (rl *RateLimiter) current(key string, now time.Time) (*rateWindow, bool) {
	v, ok := rl.counts.Get(key)
	if !ok {
		return nil, false
	}
	w := v.(*rateWindow)
	if !now.Before(w.reset) {
		return nil, false
	}
	return w, true
}

// Middleware rejects requests over the limit with 429 and a Retry-After header.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retry := rl.Allow(ClientIP(r))
		if !ok {
			secs := int(retry.Round(time.Second) / time.Second)
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			writeError(w, http.StatusTooManyRequests, "RATE001", "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
