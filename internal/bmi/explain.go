package bmi

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// driverPhrases keys a short human phrase by (feature, direction bucket).
// direction is "elevated" (z>0.5), "depressed" (z<-0.5) or "neutral".
var driverPhrases = map[FeatureName]map[string]string{
	VPB: {
		"elevated": "volume participation strongly favoring advancers",
		"depressed": "volume participation concentrated in decliners",
		"neutral":   "volume participation roughly balanced",
	},
	IPB: {
		"elevated":  "breadth of advancing issues running well above baseline",
		"depressed": "breadth of advancing issues running well below baseline",
		"neutral":   "issue breadth near baseline",
	},
	SBC: {
		"elevated":  "structural breadth above the 50/200-day MAs confirming strength",
		"depressed": "structural breadth above the 50/200-day MAs confirming weakness",
		"neutral":   "structural breadth near baseline",
	},
	IPO: {
		"elevated":  "institutional-style volume spikes more frequent than usual",
		"depressed": "institutional-style volume spikes scarcer than usual",
		"neutral":   "institutional participation near baseline",
	},
}

// GenerateExplanation builds the structured, multi-line rationale for a
// BMIResult: a status line, the top two drivers by |z-score|, an
// optional VPB/IPB divergence note, and warnings. Blocks are separated
// by a single blank line and omitted when they have nothing to say. The
// divergence note is purely diagnostic — it never alters the score.
func GenerateExplanation(band Band, components []ScoreComponent, excluded []FeatureName, status BaselineStatus) string {
	var blocks []string

	blocks = append(blocks, bandDescription(band))

	if drivers := topDrivers(components, 2); len(drivers) > 0 {
		lines := make([]string, len(drivers))
		for i, c := range drivers {
			lines[i] = fmt.Sprintf("• %s (%+.1fσ %s)", driverPhrase(c), c.ZScore, directionArrow(c.ZScore))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}

	if note := divergenceNote(components); note != "" {
		blocks = append(blocks, note)
	}

	if warning := statusWarning(status, excluded); warning != "" {
		blocks = append(blocks, warning)
	}

	return strings.Join(blocks, "\n\n")
}

func driverPhrase(c ScoreComponent) string {
	phrases, ok := driverPhrases[c.Name]
	if !ok {
		return string(c.Name)
	}
	return phrases[c.Direction()]
}

func directionArrow(z float64) string {
	switch {
	case z > 0:
		return "↑"
	case z < 0:
		return "↓"
	default:
		return "→"
	}
}

// topDrivers returns the n components with the largest |z-score|, most
// extreme first.
func topDrivers(components []ScoreComponent, n int) []ScoreComponent {
	sorted := append([]ScoreComponent(nil), components...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return math.Abs(sorted[i].ZScore) > math.Abs(sorted[j].ZScore)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// divergenceNote flags a material VPB/IPB split: capital concentrated in
// a few names (VPB >> IPB) versus broad but thin participation (IPB >>
// VPB). Diagnostic only.
func divergenceNote(components []ScoreComponent) string {
	var vpbZ, ipbZ *float64
	for _, c := range components {
		switch c.Name {
		case VPB:
			z := c.ZScore
			vpbZ = &z
		case IPB:
			z := c.ZScore
			ipbZ = &z
		}
	}
	if vpbZ == nil || ipbZ == nil {
		return ""
	}
	divergence := *vpbZ - *ipbZ
	if math.Abs(divergence) <= DivergenceWarn {
		return ""
	}
	if divergence > 0 {
		return "Divergence: narrow, mega-cap driven leadership."
	}
	return "Divergence: broad but weak participation."
}

func statusWarning(status BaselineStatus, excluded []FeatureName) string {
	var lines []string
	if status != StatusComplete {
		lines = append(lines, fmt.Sprintf("Warning: baseline status is %s.", status))
	}
	if len(excluded) > 0 {
		names := make([]string, len(excluded))
		for i, n := range excluded {
			names[i] = string(n)
		}
		lines = append(lines, fmt.Sprintf("Excluded (insufficient history or missing input): %s.", strings.Join(names, ", ")))
	}
	return strings.Join(lines, "\n")
}
