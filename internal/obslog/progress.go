package obslog

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ProgressIndicator reports per-day progress for long-running pipeline
// operations (backfill over a date range). It is deliberately simple —
// a single counter line rewritten in place with a carriage return —
// unlike an interactive TUI, it only needs to stay legible when piped
// into a log file.
type ProgressIndicator struct {
	mu        sync.Mutex
	name      string
	total     int
	current   int
	startTime time.Time
	quiet     bool
}

// NewProgressIndicator builds an indicator for a run of `total` days.
// When quiet is true, nothing is printed to stdout — neither per-step
// ticks nor the closing summary; every step and the summary are still
// logged.
func NewProgressIndicator(name string, total int, quiet bool) *ProgressIndicator {
	return &ProgressIndicator{
		name:      name,
		total:     total,
		startTime: time.Now(),
		quiet:     quiet,
	}
}

// Step advances the counter by one and logs the day just processed.
func (p *ProgressIndicator) Step(date string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current++
	if !p.quiet {
		fmt.Printf("\r%s: %d/%d (%s)", p.name, p.current, p.total, date)
	}
	log.Debug().Str("date", date).Int("completed", p.current).Int("total", p.total).Msg(p.name)
}

// Finish prints the closing summary line.
func (p *ProgressIndicator) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	duration := time.Since(p.startTime).Round(time.Millisecond)
	if !p.quiet {
		fmt.Printf("\r%s: completed %d/%d in %v\n", p.name, p.current, p.total, duration)
	}
	log.Info().Int("completed", p.current).Int("total", p.total).Dur("duration", duration).Msg(p.name + " finished")
}

// Fail prints a failure summary and logs the reason.
func (p *ProgressIndicator) Fail(reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.quiet {
		fmt.Printf("\r%s: failed after %d/%d — %s\n", p.name, p.current, p.total, reason)
	}
	log.Error().Int("completed", p.current).Int("total", p.total).Str("reason", reason).Msg(p.name + " failed")
}
