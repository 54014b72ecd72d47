package bmi

import "time"

// ZScoreSet maps the subset of {VPB,IPB,SBC,IPO} that normalized cleanly
// to an unbounded z-score. Z-scores are never clipped anywhere in this
// package.
type ZScoreSet map[FeatureName]float64

// Baselines owns the four per-feature RollingBaseline instances. It is
// mutable state that Calculate rebuilds from the history it is given on
// every call (see rebuildBaselines in pipeline.go); a day's values are
// never in the baselines used to score that day.
type Baselines struct {
	byFeature map[FeatureName]*RollingBaseline
}

// NewBaselines builds four empty rolling baselines, one per feature.
func NewBaselines() *Baselines {
	b := &Baselines{byFeature: make(map[FeatureName]*RollingBaseline, len(FeatureOrder))}
	for _, name := range FeatureOrder {
		b.byFeature[name] = NewRollingBaseline()
	}
	return b
}

// Get returns the baseline for a feature.
func (b *Baselines) Get(name FeatureName) *RollingBaseline {
	return b.byFeature[name]
}

// Append records today's raw feature values into their baselines. Must
// only be called after today's values have already been consumed for
// today's normalization — a day is never in its own baseline.
func (b *Baselines) Append(date time.Time, fv FeatureVector) error {
	for _, name := range FeatureOrder {
		value, present := fv.Get(name)
		if !present {
			continue
		}
		if err := b.byFeature[name].Append(date, value); err != nil {
			return err
		}
	}
	return nil
}

// Normalize computes z-scores for today's feature vector against the
// current baselines. A feature is excluded when its value is absent or
// its baseline isn't ready yet; no error is raised either way — missing
// baseline coverage is the normal path.
func Normalize(fv FeatureVector, baselines *Baselines) (ZScoreSet, []FeatureName, BaselineStatus) {
	zscores := make(ZScoreSet, len(FeatureOrder))
	var excluded []FeatureName

	for _, name := range FeatureOrder {
		value, present := fv.Get(name)
		if !present {
			excluded = append(excluded, name)
			continue
		}

		ready, mean, std, _ := baselines.Get(name).Read()
		if !ready {
			excluded = append(excluded, name)
			continue
		}

		zscores[name] = zscoreOf(value, mean, std)
	}

	status := StatusComplete
	switch {
	case len(excluded) == 0:
		status = StatusComplete
	case len(excluded) < len(FeatureOrder):
		status = StatusPartial
	default:
		status = StatusInsufficient
	}

	return zscores, excluded, status
}

// zscoreOf converts a raw value into a z-score against a baseline's mean
// and sample standard deviation. A zero standard deviation (a baseline
// that hasn't seen any dispersion yet) maps to a z-score of 0 rather
// than a division by zero.
func zscoreOf(value, mean, std float64) float64 {
	if std == 0 {
		return 0
	}
	return (value - mean) / std
}
