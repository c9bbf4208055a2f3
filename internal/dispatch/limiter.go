package dispatch

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter applies per-backend request rate limiting.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a limiter allowing requestsPerSecond per backend.
// A non-positive rate disables limiting.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// Wait blocks until the backend at addr may be called.
func (l *Limiter) Wait(ctx context.Context, addr string) error {
	if l == nil || l.defaultRate <= 0 {
		return nil
	}
	return l.getLimiter(addr).Wait(ctx)
}

func (l *Limiter) getLimiter(addr string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[addr]
	l.mu.RUnlock()
	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[addr]; exists {
		return limiter
	}
	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[addr] = limiter
	return limiter
}
