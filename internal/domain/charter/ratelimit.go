package charter

import (
	"sync"
	"time"
)

// fixed window counter per user; finalize is low-frequency and high-value, so
// a process-local limiter is deliberate (no distributed coordination).
type rateWindow struct {
	count   int
	resetAt time.Time
}

// RateLimiter bounds finalize attempts per user within a rolling fixed
// window. The window resets after expiry.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
	limit   int
	window  time.Duration
	now     func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 5
	}
	if window <= 0 {
		window = 10 * time.Minute
	}
	return &RateLimiter{
		windows: make(map[string]*rateWindow),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Allow consumes one attempt for the key and reports whether it was within
// the limit.
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	w, ok := r.windows[key]
	if !ok || now.After(w.resetAt) {
		r.windows[key] = &rateWindow{count: 1, resetAt: now.Add(r.window)}
		return true
	}

	if w.count >= r.limit {
		return false
	}
	w.count++
	return true
}
