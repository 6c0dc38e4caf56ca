package worker

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a minimum interval between calls to the same external
// service. It only matters for sequential lookups; parallel fan-out bypasses
// it, since simultaneous requests to independent services are not mutually
// rate-limited.
type Limiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	interval time.Duration
}

// NewLimiter creates a limiter with the given minimum interval per service.
func NewLimiter(minInterval time.Duration) *Limiter {
	if minInterval <= 0 {
		minInterval = 100 * time.Millisecond
	}

	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		interval: minInterval,
	}
}

// Throttle blocks until at least the minimum interval has elapsed since the
// last throttled call for the same service.
func (l *Limiter) Throttle(ctx context.Context, service string) error {
	return l.getLimiter(service).Wait(ctx)
}

// Allow reports whether a call to the service may proceed right now,
// consuming the slot if so.
func (l *Limiter) Allow(service string) bool {
	return l.getLimiter(service).Allow()
}

// SetServiceInterval overrides the minimum interval for one service.
func (l *Limiter) SetServiceInterval(service string, interval time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.limiters[service] = rate.NewLimiter(rate.Every(interval), 1)
}

// getLimiter returns the rate limiter for a service, creating it on first use.
func (l *Limiter) getLimiter(service string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[service]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[service]; exists {
		return limiter
	}

	// Burst 1 turns the rate into strict minimum spacing between calls.
	limiter = rate.NewLimiter(rate.Every(l.interval), 1)
	l.limiters[service] = limiter

	return limiter
}
