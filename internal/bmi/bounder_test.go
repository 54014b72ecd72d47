package bmi

import "testing"

// B2 — bootstrap boundary: history size 9 takes the sigmoid bootstrap
// path, size 10 switches to the percentile path.
func TestBoundToScore_BootstrapBoundary(t *testing.T) {
	below := NewCompositeHistory()
	for i := 0; i < bootstrapMinHistory-1; i++ {
		below.Append(0.0)
	}
	if below.Len() != 9 {
		t.Fatalf("expected 9 entries, got %d", below.Len())
	}
	scoreBelow := BoundToScore(0.0, below)
	wantBelow := 100 - sigmoid(0.0, 0, 0.5)*100
	if scoreBelow != wantBelow {
		t.Fatalf("expected bootstrap score %v, got %v", wantBelow, scoreBelow)
	}

	atThreshold := NewCompositeHistory()
	for i := 0; i < bootstrapMinHistory; i++ {
		atThreshold.Append(float64(i))
	}
	scoreAt := BoundToScore(4.5, atThreshold)
	// With 10 distinct ascending values 0..9, value 4.5 has exactly 5
	// strictly-less neighbors: percentile 50, score 50.
	if scoreAt != 50 {
		t.Fatalf("expected percentile-path score 50, got %v", scoreAt)
	}
}

func TestBoundToScore_MonotoneInversion(t *testing.T) {
	history := NewCompositeHistory()
	for i := 0; i < RollingWindow; i++ {
		history.Append(float64(i))
	}
	low := BoundToScore(1.0, history)
	high := BoundToScore(60.0, history)
	if !(high < low) {
		t.Fatalf("expected higher composite to map to a lower (greener) score: low=%v high=%v", low, high)
	}
}

// S6 — extreme percentile edge-blend never hard-clamps to {0,100}. The
// history needs actual dispersion (sigma>0) for the blend to engage at
// all, so this uses 60 values spread uniformly across [-0.3, 0.3] rather
// than a degenerate all-equal series.
func TestBoundToScore_EdgeBlendNeverHardClamps(t *testing.T) {
	history := NewCompositeHistory()
	const n = 60
	for i := 0; i < n; i++ {
		v := -0.3 + float64(i)*(0.6/float64(n-1))
		history.Append(v)
	}

	// A composite far above everything in history -> percentile ~100,
	// inverted score near 0 but blended, never exactly 0.
	score := BoundToScore(1000.0, history)
	if score <= 0 {
		t.Fatalf("expected blended score > 0, got %v", score)
	}

	score = BoundToScore(-1000.0, history)
	if score >= 100 {
		t.Fatalf("expected blended score < 100, got %v", score)
	}
}

func TestCompositeHistory_CapacityBound(t *testing.T) {
	h := NewCompositeHistory()
	for i := 0; i < RollingWindow+5; i++ {
		h.Append(float64(i))
	}
	if h.Len() != RollingWindow {
		t.Fatalf("expected capacity bound at %d, got %d", RollingWindow, h.Len())
	}
}

func TestStrictLessPercentile(t *testing.T) {
	history := []float64{1, 2, 3, 4, 5}
	if p := strictLessPercentile(3, history); p != 40 {
		t.Fatalf("expected 40, got %v", p)
	}
	if p := strictLessPercentile(0, history); p != 0 {
		t.Fatalf("expected 0, got %v", p)
	}
	if p := strictLessPercentile(10, history); p != 100 {
		t.Fatalf("expected 100, got %v", p)
	}
}
