package game

import (
	"sync"
	"time"
)

// dragMoveRateLimit caps how many drag_move samples per second a single
// player's drag is allowed to contribute, scoped to one call per message
// since drag_move arrives off the simulation clock rather than on a fixed
// physics tick.
const dragMoveRateLimit = 60

// rateLimiter is a simple fixed-window counter: allow() returns true up to
// limit times per one-second window, then false until the window rolls
// over.
type rateLimiter struct {
	mu          sync.Mutex
	limit       int
	windowStart time.Time
	count       int
}

func newRateLimiter(limit int) rateLimiter {
	return rateLimiter{limit: limit, windowStart: time.Now()}
}

func (r *rateLimiter) allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if now.Sub(r.windowStart) >= time.Second {
		r.windowStart = now
		r.count = 0
	}

	if r.count >= r.limit {
		return false
	}
	r.count++
	return true
}
