package sched

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Gate admits an event only when at least the configured interval has
// passed since the last admitted event. Refused attempts do not push the
// window forward.
type Gate struct {
	mu       sync.Mutex
	clock    Clock
	interval time.Duration
	limiter  *rate.Limiter
	last     time.Time
}

func NewGate(interval time.Duration, clock Clock) *Gate {
	if clock == nil {
		clock = RealClock()
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Gate{
		clock:    clock,
		interval: interval,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Allow reports whether an event may pass now. On success the returned
// time becomes the start of the next interval.
func (g *Gate) Allow() (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.clock.Now()
	if !g.limiter.AllowN(now, 1) {
		return now, false
	}
	g.last = now
	return now, true
}

// Last returns the time of the last admitted event, zero if none.
func (g *Gate) Last() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

func (g *Gate) Interval() time.Duration {
	return g.interval
}
