package bmi

import (
	"strings"
	"testing"
)

func componentOf(name FeatureName, z float64) ScoreComponent {
	return ScoreComponent{Name: name, Weight: Weights[name], RawValue: 0.5, ZScore: z, Contribution: Weights[name] * z}
}

func TestGenerateExplanation_StatusLineAlwaysFirst(t *testing.T) {
	components := []ScoreComponent{componentOf(VPB, 1.0), componentOf(IPB, -0.2), componentOf(SBC, 0.1), componentOf(IPO, 0.0)}
	explanation := GenerateExplanation(BandGreen, components, nil, StatusComplete)
	if !strings.HasPrefix(explanation, bandDescription(BandGreen)) {
		t.Fatalf("expected status line first, got %q", explanation)
	}
}

func TestGenerateExplanation_TopTwoDriversOnly(t *testing.T) {
	components := []ScoreComponent{
		componentOf(VPB, 0.1),
		componentOf(IPB, -3.0),
		componentOf(SBC, 2.5),
		componentOf(IPO, 0.2),
	}
	explanation := GenerateExplanation(BandYellow, components, nil, StatusComplete)
	if !strings.Contains(explanation, driverPhrase(componentOf(IPB, -3.0))) {
		t.Fatalf("expected IPB driver phrase present: %q", explanation)
	}
	if !strings.Contains(explanation, driverPhrase(componentOf(SBC, 2.5))) {
		t.Fatalf("expected SBC driver phrase present: %q", explanation)
	}
	if strings.Contains(explanation, driverPhrase(componentOf(VPB, 0.1))) {
		t.Fatalf("did not expect weakest driver VPB present: %q", explanation)
	}
}

// S3 — VPB/IPB divergence note appears only when the split exceeds
// DivergenceWarn and never changes the score.
func TestGenerateExplanation_DivergenceNote(t *testing.T) {
	narrow := []ScoreComponent{componentOf(VPB, 2.0), componentOf(IPB, 0.0), componentOf(SBC, 0.0), componentOf(IPO, 0.0)}
	explanation := GenerateExplanation(BandYellow, narrow, nil, StatusComplete)
	if !strings.Contains(explanation, "narrow, mega-cap driven leadership") {
		t.Fatalf("expected narrow-leadership divergence note: %q", explanation)
	}

	broad := []ScoreComponent{componentOf(VPB, 0.0), componentOf(IPB, 2.0), componentOf(SBC, 0.0), componentOf(IPO, 0.0)}
	explanation = GenerateExplanation(BandYellow, broad, nil, StatusComplete)
	if !strings.Contains(explanation, "broad but weak participation") {
		t.Fatalf("expected broad-but-weak divergence note: %q", explanation)
	}

	balanced := []ScoreComponent{componentOf(VPB, 0.3), componentOf(IPB, 0.2), componentOf(SBC, 0.0), componentOf(IPO, 0.0)}
	explanation = GenerateExplanation(BandYellow, balanced, nil, StatusComplete)
	if strings.Contains(explanation, "Divergence") {
		t.Fatalf("did not expect a divergence note: %q", explanation)
	}
}

func TestGenerateExplanation_WarningsOnPartialStatus(t *testing.T) {
	components := []ScoreComponent{componentOf(VPB, 1.0), componentOf(IPB, 1.0), componentOf(SBC, 1.0)}
	explanation := GenerateExplanation(BandGreen, components, []FeatureName{IPO}, StatusPartial)
	if !strings.Contains(explanation, "PARTIAL") {
		t.Fatalf("expected PARTIAL status warning: %q", explanation)
	}
	if !strings.Contains(explanation, "IPO") {
		t.Fatalf("expected excluded feature named: %q", explanation)
	}
}

func TestGenerateExplanation_NoWarningsOnCompleteStatus(t *testing.T) {
	components := []ScoreComponent{componentOf(VPB, 0.1), componentOf(IPB, 0.1), componentOf(SBC, 0.1), componentOf(IPO, 0.1)}
	explanation := GenerateExplanation(BandGreen, components, nil, StatusComplete)
	if strings.Contains(explanation, "Warning") {
		t.Fatalf("did not expect a warning block: %q", explanation)
	}
}
