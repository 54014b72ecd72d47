package ingest

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter is a per-vendor token bucket rate limiter. One Limiter guards
// exactly one vendor's host, matching that vendor's published RPS/burst
// envelope from config.VendorConfig.
type Limiter struct {
	mu sync.RWMutex
	rl *rate.Limiter
}

// NewLimiter builds a limiter for rps requests/sec with the given burst.
func NewLimiter(rps float64, burst int) *Limiter {
	return &Limiter{rl: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Wait blocks until a request is permitted or ctx is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.rl.Wait(ctx)
}

// SetLimit updates the requests-per-second rate, used when a vendor's
// daily budget forces a mid-run slowdown.
func (l *Limiter) SetLimit(rps float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rl.SetLimit(rate.Limit(rps))
}
