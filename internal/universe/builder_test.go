package universe

import (
	"testing"
	"time"

	"github.com/aurora-bmi/aurorabmi/internal/config"
)

func TestBuilder_AppliesStrictFilters(t *testing.T) {
	b := NewBuilder(DefaultCriteria(), nil)
	candidates := []Candidate{
		{Symbol: "AAA", Price: 10, Volume: 2e6, MarketCap: 3e9},
		{Symbol: "BBB", Price: 2, Volume: 2e6, MarketCap: 3e9},  // below min price
		{Symbol: "CCC", Price: 10, Volume: 1e5, MarketCap: 3e9}, // below min volume
		{Symbol: "DDD", Price: 10, Volume: 2e6, MarketCap: 1e9}, // below min market cap
	}

	snapshot := b.Build(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), candidates, 0)

	if len(snapshot.Tickers) != 1 || snapshot.Tickers[0] != "AAA" {
		t.Fatalf("expected only AAA to pass filters, got %v", snapshot.Tickers)
	}
}

func TestBuilder_DeduplicatesAndSorts(t *testing.T) {
	b := NewBuilder(DefaultCriteria(), nil)
	candidates := []Candidate{
		{Symbol: "ZZZ", Price: 10, Volume: 2e6, MarketCap: 3e9},
		{Symbol: "AAA", Price: 10, Volume: 2e6, MarketCap: 3e9},
		{Symbol: "AAA", Price: 10, Volume: 2e6, MarketCap: 3e9},
	}

	snapshot := b.Build(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), candidates, 0)

	if len(snapshot.Tickers) != 2 {
		t.Fatalf("expected 2 unique tickers, got %v", snapshot.Tickers)
	}
	if snapshot.Tickers[0] != "AAA" || snapshot.Tickers[1] != "ZZZ" {
		t.Fatalf("expected sorted order, got %v", snapshot.Tickers)
	}
}

func TestBuilder_RespectsSeedExclusions(t *testing.T) {
	seed := &config.UniverseSeed{Excluded: map[string]string{"AAA": "halted"}}
	b := NewBuilder(DefaultCriteria(), seed)
	candidates := []Candidate{
		{Symbol: "AAA", Price: 10, Volume: 2e6, MarketCap: 3e9},
		{Symbol: "BBB", Price: 10, Volume: 2e6, MarketCap: 3e9},
	}

	snapshot := b.Build(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), candidates, 0)

	if len(snapshot.Tickers) != 1 || snapshot.Tickers[0] != "BBB" {
		t.Fatalf("expected AAA excluded, got %v", snapshot.Tickers)
	}
}

func TestSnapshot_SizeChangeWarning(t *testing.T) {
	grew := Snapshot{Tickers: make([]string, 120), PreviousCount: 100}
	if !grew.SizeChangeWarning() {
		t.Fatalf("expected warning for 20%% growth")
	}

	stable := Snapshot{Tickers: make([]string, 103), PreviousCount: 100}
	if stable.SizeChangeWarning() {
		t.Fatalf("did not expect warning for 3%% growth")
	}

	noBaseline := Snapshot{Tickers: make([]string, 50), PreviousCount: 0}
	if noBaseline.SizeChangeWarning() {
		t.Fatalf("did not expect warning with no previous baseline")
	}
}
