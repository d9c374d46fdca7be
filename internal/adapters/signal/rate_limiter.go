package signal

import (
	"sync"

	"github.com/dkeye/Huddle/internal/core"
	"golang.org/x/time/rate"
)

// EventRateLimiter keeps one token bucket per connection.
type EventRateLimiter struct {
	mu      sync.Mutex
	buckets map[core.SessionID]*rate.Limiter
	limit   rate.Limit
	burst   int
}

// NewEventRateLimiter returns nil when perSecond is not positive, which
// disables limiting.
func NewEventRateLimiter(perSecond float64, burst int) *EventRateLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &EventRateLimiter{
		buckets: make(map[core.SessionID]*rate.Limiter),
		limit:   rate.Limit(perSecond),
		burst:   burst,
	}
}

func (rl *EventRateLimiter) Allow(sid core.SessionID) bool {
	rl.mu.Lock()
	l, ok := rl.buckets[sid]
	if !ok {
		l = rate.NewLimiter(rl.limit, rl.burst)
		rl.buckets[sid] = l
	}
	rl.mu.Unlock()
	return l.Allow()
}

func (rl *EventRateLimiter) Forget(sid core.SessionID) {
	rl.mu.Lock()
	delete(rl.buckets, sid)
	rl.mu.Unlock()
}

func (rl *EventRateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}
