// Package universe maintains the daily ticker-membership snapshot that
// IPO's rel_vol/rel_vol_q90 slices are computed over when a caller wants
// aurorabmi to compute them rather than receive them pre-computed.
// Universe building is deliberately separate from feature computation:
// the core in internal/bmi never sees a ticker, only the resulting
// []float64. Once built, a day's snapshot is immutable.
package universe

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aurora-bmi/aurorabmi/internal/config"
)

// Criteria are the strict membership filters. If quality is uncertain
// the rule is to shrink the universe, never expand it with noisy names.
type Criteria struct {
	MinMarketCap float64
	MinPrice     float64
	MinVolume    float64
}

// DefaultCriteria matches the original AURORA screen: $2B market cap,
// $5 price floor, 1M-share daily volume floor.
func DefaultCriteria() Criteria {
	return Criteria{MinMarketCap: 2e9, MinPrice: 5.0, MinVolume: 1e6}
}

// Candidate is one screened stock before universe filtering.
type Candidate struct {
	Symbol    string
	Exchange  string
	Price     float64
	Volume    float64
	MarketCap float64
}

// Snapshot is one trading day's immutable universe membership.
type Snapshot struct {
	Date          time.Time
	Tickers       []string
	PreviousCount int
}

// SizeChangeWarning reports whether this snapshot's membership count
// moved more than 10% day-over-day, the same threshold the original
// universe builder logs against.
func (s Snapshot) SizeChangeWarning() bool {
	if s.PreviousCount == 0 {
		return false
	}
	change := float64(len(s.Tickers)-s.PreviousCount) / float64(s.PreviousCount)
	return change > 0.10 || change < -0.10
}

// Builder constructs daily universe snapshots from fresh screener
// candidates, dropping any ticker on the seed's exclusion list. The
// seed's exchange and ticker lists are not consulted.
type Builder struct {
	criteria Criteria
	seed     *config.UniverseSeed
}

// NewBuilder builds a universe Builder over a static seed list.
func NewBuilder(criteria Criteria, seed *config.UniverseSeed) *Builder {
	return &Builder{criteria: criteria, seed: seed}
}

// Build applies the strict filters to a day's screened candidates and
// returns a deduplicated, sorted, immutable snapshot. previousCount
// feeds SizeChangeWarning; pass 0 if there is no prior snapshot.
func (b *Builder) Build(date time.Time, candidates []Candidate, previousCount int) Snapshot {
	filtered := b.applyFilters(candidates)
	tickers := b.deduplicate(filtered)

	snapshot := Snapshot{Date: date, Tickers: tickers, PreviousCount: previousCount}

	if len(snapshot.Tickers) == 0 {
		log.Error().Time("date", date).Msg("universe snapshot is empty")
	} else if snapshot.SizeChangeWarning() {
		log.Warn().
			Time("date", date).
			Int("previous_count", previousCount).
			Int("count", len(snapshot.Tickers)).
			Msg("universe size changed more than 10% day-over-day")
	}

	return snapshot
}

func (b *Builder) applyFilters(candidates []Candidate) []Candidate {
	excluded := b.excludedSet()

	filtered := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Symbol == "" {
			continue
		}
		if _, isExcluded := excluded[c.Symbol]; isExcluded {
			continue
		}
		if c.Price < b.criteria.MinPrice {
			continue
		}
		if c.Volume < b.criteria.MinVolume {
			continue
		}
		if c.MarketCap < b.criteria.MinMarketCap {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered
}

func (b *Builder) excludedSet() map[string]string {
	if b.seed == nil {
		return nil
	}
	return b.seed.Excluded
}

func (b *Builder) deduplicate(candidates []Candidate) []string {
	seen := make(map[string]bool, len(candidates))
	unique := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if seen[c.Symbol] {
			continue
		}
		seen[c.Symbol] = true
		unique = append(unique, c.Symbol)
	}
	sort.Strings(unique)
	return unique
}
