package ratelimiter

import (
	"sync"
	"time"
)

type window struct {
	start time.Time
	count int
}

// FixedWindowRateLimiter allows limit requests per client IP in each window.
// Expired windows are swept at most once per window length.
type FixedWindowRateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*window
	limit     int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewFixedWindowLimiter(limit int, length time.Duration) *FixedWindowRateLimiter {
	return &FixedWindowRateLimiter{
		clients:   make(map[string]*window),
		limit:     limit,
		window:    length,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow reports whether ip may proceed and, if not, how long until its
// window resets.
func (rl *FixedWindowRateLimiter) Allow(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	w, ok := rl.clients[ip]
	if !ok || now.Sub(w.start) >= rl.window {
		rl.clients[ip] = &window{start: now, count: 1}
		return true, 0
	}
	if w.count < rl.limit {
		w.count++
		return true, 0
	}
	return false, rl.window - now.Sub(w.start)
}

func (rl *FixedWindowRateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.window {
		return
	}
	for ip, w := range rl.clients {
		if now.Sub(w.start) >= rl.window {
			delete(rl.clients, ip)
		}
	}
	rl.lastSweep = now
}
