// Package bmi implements the AURORA breadth market index scoring pipeline:
// four feature calculators, a rolling baseline, a z-score normalizer, a
// weighted compositor, a percentile bounder, a band classifier and a
// structured explanation generator. The package has no I/O of its own —
// callers hand it FeatureInputs and a HistoryView and get back a BMIResult.
package bmi

import "time"

// Weights are frozen design choices, never tuned at runtime.
const (
	WeightVPB = 0.30
	WeightIPB = 0.25
	WeightSBC = 0.25
	WeightIPO = 0.20
)

// Rolling baseline parameters, frozen.
const (
	RollingWindow     = 63
	MinObservations   = 21
	IPOPercentile     = 90.0
	IPOFallbackThresh = 2.0
	DivergenceWarn    = 1.0
)

// FeatureName identifies one of the four breadth dimensions.
type FeatureName string

const (
	VPB FeatureName = "VPB"
	IPB FeatureName = "IPB"
	SBC FeatureName = "SBC"
	IPO FeatureName = "IPO"
)

// FeatureOrder is the canonical iteration order used throughout the
// pipeline (weight lookup, component ordering, explanation phrasing).
var FeatureOrder = [4]FeatureName{VPB, IPB, SBC, IPO}

// Weights maps a feature name to its frozen composite weight.
var Weights = map[FeatureName]float64{
	VPB: WeightVPB,
	IPB: WeightIPB,
	SBC: WeightSBC,
	IPO: WeightIPO,
}

// FeatureInputs carries one trading day's raw inputs to the four feature
// calculators. Pointer fields are nil when the corresponding observation
// is absent; RelVol/RelVolQ90 are nil slices when absent.
type FeatureInputs struct {
	Date time.Time

	VAdv *float64 `json:"v_adv,omitempty"`
	VDec *float64 `json:"v_dec,omitempty"`

	NAdv *int64 `json:"n_adv,omitempty"`
	NDec *int64 `json:"n_dec,omitempty"`

	PctMA50  *float64 `json:"pct_ma50,omitempty"`
	PctMA200 *float64 `json:"pct_ma200,omitempty"`

	RelVol         []float64 `json:"rel_vol,omitempty"`
	RelVolQ90      []float64 `json:"rel_vol_q90,omitempty"`
	UniverseMedian *float64  `json:"universe_median,omitempty"`
}

// FeatureVector holds the four raw feature values computed for one day.
// A nil pointer means the feature is absent for that day.
type FeatureVector struct {
	VPB *float64
	IPB *float64
	SBC *float64
	IPO *float64
}

// Get returns the value for a feature name, and whether it is present.
func (fv FeatureVector) Get(name FeatureName) (float64, bool) {
	var p *float64
	switch name {
	case VPB:
		p = fv.VPB
	case IPB:
		p = fv.IPB
	case SBC:
		p = fv.SBC
	case IPO:
		p = fv.IPO
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// BaselineStatus summarizes how many of the four features had a ready
// baseline to normalize against.
type BaselineStatus string

const (
	StatusComplete     BaselineStatus = "COMPLETE"
	StatusPartial      BaselineStatus = "PARTIAL"
	StatusInsufficient BaselineStatus = "INSUFFICIENT"
)

// Band is one of four discrete participation-health labels.
type Band string

const (
	BandGreen      Band = "GREEN"
	BandLightGreen Band = "LIGHT_GREEN"
	BandYellow     Band = "YELLOW"
	BandRed        Band = "RED"
)

// bandOrder gives the GREEN < LIGHT_GREEN < YELLOW < RED ordering used by
// invariant I6 (band monotone in score).
var bandOrder = map[Band]int{
	BandGreen:      0,
	BandLightGreen: 1,
	BandYellow:     2,
	BandRed:        3,
}

// Less reports whether b ranks healthier than other.
func (b Band) Less(other Band) bool {
	return bandOrder[b] < bandOrder[other]
}

// ScoreComponent is one weighted feature's contribution to the composite,
// immutable once built. ZScore is never clipped.
type ScoreComponent struct {
	Name         FeatureName `json:"name"`
	Weight       float64     `json:"weight"`
	RawValue     float64     `json:"raw_value"`
	ZScore       float64     `json:"zscore"`
	Contribution float64     `json:"contribution"`
}

// Direction buckets the component's z-score for explanation phrasing.
func (c ScoreComponent) Direction() string {
	switch {
	case c.ZScore > 0.5:
		return "elevated"
	case c.ZScore < -0.5:
		return "depressed"
	default:
		return "neutral"
	}
}

// BMIResult is the immutable output of one day's pipeline run.
type BMIResult struct {
	Date             time.Time        `json:"date"`
	Score            float64          `json:"score"`
	Band             Band             `json:"band"`
	RawComposite     float64          `json:"raw_composite"`
	Status           BaselineStatus   `json:"status"`
	ExcludedFeatures []FeatureName    `json:"excluded_features"`
	Components       []ScoreComponent `json:"components"`
	Explanation      string           `json:"explanation"`
}

// ComponentValues is one feature's persisted z-score and contribution for
// a trading day, the `<F>_zscore, <F>_contribution` component columns.
// The matching `<F>_raw` column is VPB/IPB/SBC/IPO on the enclosing
// HistoryRow itself, so it is not duplicated here.
type ComponentValues struct {
	ZScore       float64
	Contribution float64
}

// HistoryRow is one persisted trading day, column-major per spec.md §6.
// VPB/IPB/SBC/IPO/RawComposite are nil when that day recorded no value
// for the field (absent feature, or pre-scoring bootstrap row).
type HistoryRow struct {
	Date         time.Time
	VPB          *float64
	IPB          *float64
	SBC          *float64
	IPO          *float64
	RawComposite *float64

	// Components holds the informational <F>_zscore/<F>_contribution
	// columns, keyed by feature name. A feature absent from the map was
	// excluded from that day's composite (no ScoreComponent was built
	// for it), not merely zero.
	Components map[FeatureName]ComponentValues

	// Informational, not consumed by the core.
	Score       *float64
	Band        *Band
	Status      *BaselineStatus
	Explanation *string
}

// HistoryView is an ordered, finite sequence of HistoryRow dated strictly
// earlier than the day being scored.
type HistoryView []HistoryRow
