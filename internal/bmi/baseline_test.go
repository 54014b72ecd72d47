package bmi

import (
	"math"
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestRollingBaseline_ReadyThreshold(t *testing.T) {
	b := NewRollingBaseline()
	for i := 0; i < MinObservations-1; i++ {
		if err := b.Append(day(i), 0.5); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if b.Ready() {
		t.Fatalf("expected not ready at %d observations", MinObservations-1)
	}
	if err := b.Append(day(MinObservations-1), 0.5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.Ready() {
		t.Fatalf("expected ready at %d observations", MinObservations)
	}
}

func TestRollingBaseline_CapacityBound(t *testing.T) {
	b := NewRollingBaseline()
	for i := 0; i < RollingWindow+10; i++ {
		if err := b.Append(day(i), float64(i)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if b.Count() != RollingWindow {
		t.Fatalf("expected capacity bound at %d, got %d", RollingWindow, b.Count())
	}
	_, _, _, values := b.Read()
	if values[0] != 10 {
		t.Fatalf("expected oldest surviving value 10, got %v", values[0])
	}
}

func TestRollingBaseline_ZeroStdOnConstantValues(t *testing.T) {
	b := NewRollingBaseline()
	for i := 0; i < MinObservations; i++ {
		_ = b.Append(day(i), 0.5)
	}
	ready, mean, std, _ := b.Read()
	if !ready || std != 0 || mean != 0.5 {
		t.Fatalf("expected ready mean=0.5 std=0, got ready=%v mean=%v std=%v", ready, mean, std)
	}
}

func TestRollingBaseline_RejectsNonMonotonicDate(t *testing.T) {
	b := NewRollingBaseline()
	if err := b.Append(day(5), 0.5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Append(day(4), 0.5); err == nil {
		t.Fatalf("expected error for non-monotonic date")
	}
	if err := b.Append(day(5), 0.5); err == nil {
		t.Fatalf("expected error for repeated date")
	}
}

func TestRollingBaseline_RejectsNonFinite(t *testing.T) {
	b := NewRollingBaseline()
	if err := b.Append(day(0), math.Inf(1)); err == nil {
		t.Fatalf("expected error for non-finite value")
	}
}

