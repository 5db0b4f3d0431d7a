package handler

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// retryAfter is the Retry-After value sent with 429 responses, in seconds.
const retryAfter = "60"

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter limits requests per client IP with a token bucket that refills
// perMinute tokens each minute.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

// NewRateLimiter returns nil when perMinute is not positive; a nil limiter
// lets every request through.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		now:      time.Now,
	}
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = rl.now()
	rl.mu.Unlock()
	return v.limiter.Allow()
}

// Sweep drops visitors idle for longer than ttl and returns the number dropped.
func (rl *RateLimiter) Sweep(ttl time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	n := 0
	for ip, v := range rl.visitors {
		if rl.now().Sub(v.lastSeen) > ttl {
			delete(rl.visitors, ip)
			n++
		}
	}
	return n
}

// Run sweeps idle visitors every minute until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) {
	if rl == nil {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Sweep(3 * time.Minute)
		}
	}
}

// Allow takes a token for the client of r. A nil limiter allows everything.
func (rl *RateLimiter) Allow(r *http.Request) bool {
	if rl == nil {
		return true
	}
	if !rl.allow(clientIP(r)) {
		slog.Warn("rate limit exceeded", "ip", clientIP(r), "path", r.URL.Path)
		return false
	}
	return true
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	if rl == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(r) {
			w.Header().Set("Retry-After", retryAfter)
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP relies on chi's RealIP middleware having rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
