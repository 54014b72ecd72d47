package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// UniverseSeed is the static seed list of ticker membership consumed by
// internal/universe to build the day's constituent set. Kept on yaml.v2
// deliberately — a second, independently-evolved config surface from
// config.go's yaml.v3, rather than homogenizing both files onto one
// decoder version.
type UniverseSeed struct {
	Exchanges []string          `yaml:"exchanges"`
	Tickers   []SeedTicker      `yaml:"tickers"`
	Excluded  map[string]string `yaml:"excluded"` // ticker -> exclusion reason
}

// SeedTicker is one constituent's static classification.
type SeedTicker struct {
	Symbol   string `yaml:"symbol"`
	Exchange string `yaml:"exchange"`
	Sector   string `yaml:"sector"`
}

// LoadUniverseSeed reads the static seed universe file.
func LoadUniverseSeed(path string) (*UniverseSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read universe seed %s: %w", path, err)
	}

	var seed UniverseSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse universe seed %s: %w", path, err)
	}

	if len(seed.Tickers) == 0 {
		return nil, fmt.Errorf("universe seed %s has no tickers", path)
	}

	return &seed, nil
}
