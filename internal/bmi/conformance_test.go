package bmi

import "testing"

// Weights must sum to exactly 1.0 — this is a frozen design constant, not
// a tunable, and any drift here silently changes every composite score.
func TestConformance_WeightsSumToOne(t *testing.T) {
	var total float64
	for _, name := range FeatureOrder {
		total += Weights[name]
	}
	if total < 1.0-1e-9 || total > 1.0+1e-9 {
		t.Fatalf("weights sum to %.12f, expected 1.0", total)
	}
}

func TestConformance_FeatureOrderCoversAllWeights(t *testing.T) {
	if len(FeatureOrder) != len(Weights) {
		t.Fatalf("FeatureOrder has %d entries, Weights has %d", len(FeatureOrder), len(Weights))
	}
	seen := make(map[FeatureName]bool, len(FeatureOrder))
	for _, name := range FeatureOrder {
		if seen[name] {
			t.Fatalf("duplicate feature %s in FeatureOrder", name)
		}
		seen[name] = true
		if _, ok := Weights[name]; !ok {
			t.Fatalf("feature %s has no weight", name)
		}
	}
}

// Band thresholds must partition [0,100] with no gaps and no overlap.
func TestConformance_BandThresholdsPartitionRange(t *testing.T) {
	cases := []struct {
		score float64
		want  Band
	}{
		{0, BandGreen}, {25, BandGreen},
		{25.0000001, BandLightGreen}, {50, BandLightGreen},
		{50.0000001, BandYellow}, {75, BandYellow},
		{75.0000001, BandRed}, {100, BandRed},
	}
	for _, tc := range cases {
		if got := ClassifyBand(tc.score); got != tc.want {
			t.Errorf("score %v: expected %v, got %v", tc.score, tc.want, got)
		}
	}
}

func TestConformance_BandOrderIsTotal(t *testing.T) {
	bands := []Band{BandGreen, BandLightGreen, BandYellow, BandRed}
	for i := range bands {
		for j := range bands {
			want := i < j
			got := bands[i].Less(bands[j])
			if got != want {
				t.Errorf("%s.Less(%s) = %v, want %v", bands[i], bands[j], got, want)
			}
		}
	}
}

// Rolling baseline parameters are frozen constants, not runtime-tunable.
func TestConformance_RollingBaselineParameters(t *testing.T) {
	if RollingWindow != 63 {
		t.Errorf("expected RollingWindow=63, got %d", RollingWindow)
	}
	if MinObservations != 21 {
		t.Errorf("expected MinObservations=21, got %d", MinObservations)
	}
	if MinObservations >= RollingWindow {
		t.Errorf("MinObservations must be strictly less than RollingWindow")
	}
}

func TestConformance_ScoreNeverExceedsBounds(t *testing.T) {
	history := NewCompositeHistory()
	for i := 0; i < RollingWindow; i++ {
		history.Append(float64(i) - 30)
	}
	for _, composite := range []float64{-1e6, -100, -1, 0, 1, 100, 1e6} {
		score := BoundToScore(composite, history)
		if score < 0 || score > 100 {
			t.Errorf("BoundToScore(%v) = %v, out of [0,100]", composite, score)
		}
	}
}
