package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// rateBucket tracks request counts per IP within a time window.
type rateBucket struct {
	count   int
	resetAt time.Time
}

// RateLimiter is a fixed-window, per-IP limiter. It guards the login route.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rateBucket
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewRateLimiter allows limit requests per window per IP. Stale buckets are
// pruned every minute until ctx is done.
func NewRateLimiter(ctx context.Context, limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*rateBucket),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.cleanup()
			}
		}
	}()
	return rl
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for ip, b := range rl.buckets {
		if now.After(b.resetAt) {
			delete(rl.buckets, ip)
		}
	}
}

type RateLimitEntry struct {
	IP      string    `json:"ip"`
	Count   int       `json:"count"`
	ResetAt time.Time `json:"reset_at"`
}

// RateLimitStatus is returned by the admin API.
type RateLimitStatus struct {
	Limit   int              `json:"limit"`
	Window  string           `json:"window"`
	Entries []RateLimitEntry `json:"entries"`
}

func (rl *RateLimiter) Status() RateLimitStatus {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entries := make([]RateLimitEntry, 0, len(rl.buckets))
	now := rl.now()
	for ip, b := range rl.buckets {
		if now.Before(b.resetAt) {
			entries = append(entries, RateLimitEntry{IP: ip, Count: b.count, ResetAt: b.resetAt})
		}
	}
	return RateLimitStatus{
		Limit:   rl.limit,
		Window:  rl.window.String(),
		Entries: entries,
	}
}

// Clear forgets every tracked IP.
func (rl *RateLimiter) Clear() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.buckets = make(map[string]*rateBucket)
}

// allow counts one request from ip and returns whether it is within the
// limit, plus the time until the window resets.
func (rl *RateLimiter) allow(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[ip]
	if !ok || now.After(b.resetAt) {
		b = &rateBucket{resetAt: now.Add(rl.window)}
		rl.buckets[ip] = b
	}
	b.count++
	return b.count <= rl.limit, b.resetAt.Sub(now)
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, retry := rl.allow(clientIP(r))
		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			writeError(w, "too many requests, try again later", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP is RemoteAddr without the port. RealIP runs first, so behind a
// proxy this is already the forwarded address.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
