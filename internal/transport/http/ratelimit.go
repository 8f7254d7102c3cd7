package http

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// rateLimiter admits at most limit frames per fixed window.
type rateLimiter struct {
	mu     sync.Mutex
	clock  clock.Clock
	limit  int
	window time.Duration
	start  time.Time
	count  int
}

func newRateLimiter(limit int, clk clock.Clock) *rateLimiter {
	if clk == nil {
		clk = clock.New()
	}
	return &rateLimiter{
		clock:  clk,
		limit:  limit,
		window: time.Minute,
		start:  clk.Now(),
	}
}

func (r *rateLimiter) allow() bool {
	if r == nil || r.limit <= 0 {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	if now.Sub(r.start) >= r.window {
		r.start = now
		r.count = 0
	}
	r.count++
	return r.count <= r.limit
}
