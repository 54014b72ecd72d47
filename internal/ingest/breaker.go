package ingest

import (
	"time"

	"github.com/sony/gobreaker"
)

// NewBreaker builds a per-vendor circuit breaker. It trips after
// consecutiveFailures in a row, or once request volume is large enough
// that a >50% failure rate is statistically meaningful, and stays open
// for timeout before allowing a single trial request through.
func NewBreaker(name string, consecutiveFailures uint32, timeout time.Duration) *gobreaker.CircuitBreaker {
	settings := gobreaker.Settings{
		Name:    name,
		Timeout: timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= consecutiveFailures {
				return true
			}
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) > 0.5
		},
	}
	return gobreaker.NewCircuitBreaker(settings)
}
