package bmi

import (
	"math"
	"testing"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func TestComputeVPB(t *testing.T) {
	cases := []struct {
		name     string
		vAdv     *float64
		vDec     *float64
		wantNil  bool
		wantVal  float64
		wantErr  bool
	}{
		{"basic", f64(3e9), f64(1e9), false, 0.75, false},
		{"missing vAdv", nil, f64(1e9), true, 0, false},
		{"missing vDec", f64(1e9), nil, true, 0, false},
		{"negative vAdv", f64(-1), f64(1), true, 0, false},
		{"zero sum", f64(0), f64(0), true, 0, false},
		{"non-finite", f64(math.NaN()), f64(1), false, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := computeVPB(tc.vAdv, tc.vDec)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantNil {
				if got != nil {
					t.Fatalf("expected nil, got %v", *got)
				}
				return
			}
			if got == nil || math.Abs(*got-tc.wantVal) > 1e-12 {
				t.Fatalf("expected %v, got %v", tc.wantVal, got)
			}
		})
	}
}

func TestComputeIPB(t *testing.T) {
	got, err := computeIPB(i64(400), i64(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || math.Abs(*got-0.80) > 1e-12 {
		t.Fatalf("expected 0.80, got %v", got)
	}

	if got, _ := computeIPB(nil, i64(1)); got != nil {
		t.Fatalf("expected nil for missing n_adv")
	}
	if got, _ := computeIPB(i64(-1), i64(1)); got != nil {
		t.Fatalf("expected nil for negative n_adv")
	}
	if got, _ := computeIPB(i64(0), i64(0)); got != nil {
		t.Fatalf("expected nil for zero total issues")
	}
}

func TestComputeSBC(t *testing.T) {
	// Both present.
	got, err := computeSBC(f64(75), f64(80))
	if err != nil || got == nil || math.Abs(*got-0.775) > 1e-12 {
		t.Fatalf("expected 0.775, got %v err %v", got, err)
	}

	// Degraded mode: only MA50.
	got, err = computeSBC(f64(60), nil)
	if err != nil || got == nil || math.Abs(*got-0.60) > 1e-12 {
		t.Fatalf("expected degraded 0.60, got %v err %v", got, err)
	}

	// Degraded mode: only MA200.
	got, err = computeSBC(nil, f64(40))
	if err != nil || got == nil || math.Abs(*got-0.40) > 1e-12 {
		t.Fatalf("expected degraded 0.40, got %v err %v", got, err)
	}

	// Both missing.
	if got, _ := computeSBC(nil, nil); got != nil {
		t.Fatalf("expected nil when both missing")
	}

	// Out of range.
	if got, _ := computeSBC(f64(150), f64(50)); got != nil {
		t.Fatalf("expected nil when out of range")
	}

	// Boundary values 0 and 100 (B4).
	got, err = computeSBC(f64(0), f64(100))
	if err != nil || got == nil || math.Abs(*got-0.50) > 1e-12 {
		t.Fatalf("expected 0.50 for boundary inputs, got %v err %v", got, err)
	}
}

func TestComputeIPO(t *testing.T) {
	// Empty -> absent.
	if got, _ := computeIPO(nil, nil, nil); got != nil {
		t.Fatalf("expected nil for empty rel_vol")
	}

	// Dual filter: fallback threshold 2.0, no q90 given.
	relVol := []float64{2.1, 2.5, 2.8, 3.0, 2.2}
	got, err := computeIPO(relVol, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// median of relVol is 2.5; every value > 2.5 AND > 2.0 counts: 2.8,3.0 -> 2/5
	if got == nil || math.Abs(*got-0.4) > 1e-12 {
		t.Fatalf("expected 0.4, got %v", got)
	}

	// B3: every rv equal to the universe median -> 0 spikes (ties denied).
	tieVol := []float64{1.0, 1.0, 1.0, 1.0}
	median := 1.0
	got, err = computeIPO(tieVol, nil, &median)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || *got != 0 {
		t.Fatalf("expected 0 spikes on ties, got %v", got)
	}

	// Per-stock Q90 thresholds override the fallback.
	q90 := []float64{0.5, 0.5, 0.5, 0.5}
	got, err = computeIPO(tieVol, q90, f64(0.4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// rv=1.0 > q90=0.5 AND 1.0 > median=0.4 -> all 4 spike.
	if got == nil || *got != 1.0 {
		t.Fatalf("expected 1.0, got %v", got)
	}
}

func TestComputeMedian(t *testing.T) {
	if m := computeMedian([]float64{1, 2, 3}); m != 2 {
		t.Fatalf("expected 2, got %v", m)
	}
	if m := computeMedian([]float64{1, 2, 3, 4}); m != 2.5 {
		t.Fatalf("expected 2.5, got %v", m)
	}
}

func TestDistributionCollapseWarning(t *testing.T) {
	if !DistributionCollapseWarning(i64(95), i64(5)) {
		t.Fatalf("expected collapse warning for 95/5 split")
	}
	if DistributionCollapseWarning(i64(50), i64(50)) {
		t.Fatalf("expected no warning for balanced split")
	}
}
