package bmi

import (
	"math"
	"sort"
)

// ComputeFeatures maps one trading day's raw inputs to the four breadth
// feature values. None of the four calculators consult history; absence
// of inputs is the normal path and is reported via nil fields, not an
// error. The only error path is programmatic misuse: a non-finite input.
func ComputeFeatures(in FeatureInputs) (FeatureVector, error) {
	vpb, err := computeVPB(in.VAdv, in.VDec)
	if err != nil {
		return FeatureVector{}, err
	}
	ipb, err := computeIPB(in.NAdv, in.NDec)
	if err != nil {
		return FeatureVector{}, err
	}
	sbc, err := computeSBC(in.PctMA50, in.PctMA200)
	if err != nil {
		return FeatureVector{}, err
	}
	ipo, err := computeIPO(in.RelVol, in.RelVolQ90, in.UniverseMedian)
	if err != nil {
		return FeatureVector{}, err
	}
	return FeatureVector{VPB: vpb, IPB: ipb, SBC: sbc, IPO: ipo}, nil
}

// computeVPB is the Volume Participation Breadth calculator:
// v_adv / (v_adv + v_dec). Absent on missing input, negative input, or a
// zero sum.
func computeVPB(vAdv, vDec *float64) (*float64, error) {
	if vAdv == nil || vDec == nil {
		return nil, nil
	}
	if err := requireFinite("v_adv", *vAdv); err != nil {
		return nil, err
	}
	if err := requireFinite("v_dec", *vDec); err != nil {
		return nil, err
	}
	if *vAdv < 0 || *vDec < 0 {
		return nil, nil
	}
	total := *vAdv + *vDec
	if total == 0 {
		return nil, nil
	}
	v := *vAdv / total
	return &v, nil
}

// computeIPB is the Issue Participation Breadth calculator:
// n_adv / (n_adv + n_dec). Same absence structure as VPB.
func computeIPB(nAdv, nDec *int64) (*float64, error) {
	if nAdv == nil || nDec == nil {
		return nil, nil
	}
	if *nAdv < 0 || *nDec < 0 {
		return nil, nil
	}
	total := *nAdv + *nDec
	if total == 0 {
		return nil, nil
	}
	v := float64(*nAdv) / float64(total)
	return &v, nil
}

// computeSBC is the Structural Breadth Confirmation calculator. When
// both pct_ma50 and pct_ma200 are present and in [0,100], value is their
// average divided by 100. When exactly one is present and in range, the
// degraded-mode value is that one alone, still counted as present for
// normalization rather than down-weighted.
func computeSBC(pctMA50, pctMA200 *float64) (*float64, error) {
	if pctMA50 == nil && pctMA200 == nil {
		return nil, nil
	}
	if pctMA50 != nil {
		if err := requireFinite("pct_ma50", *pctMA50); err != nil {
			return nil, err
		}
	}
	if pctMA200 != nil {
		if err := requireFinite("pct_ma200", *pctMA200); err != nil {
			return nil, err
		}
	}

	inRange := func(v float64) bool { return v >= 0 && v <= 100 }

	switch {
	case pctMA50 != nil && pctMA200 != nil:
		if !inRange(*pctMA50) || !inRange(*pctMA200) {
			return nil, nil
		}
		v := ((*pctMA50 + *pctMA200) / 2) / 100.0
		return &v, nil
	case pctMA50 != nil:
		if !inRange(*pctMA50) {
			return nil, nil
		}
		v := *pctMA50 / 100.0
		return &v, nil
	default:
		if !inRange(*pctMA200) {
			return nil, nil
		}
		v := *pctMA200 / 100.0
		return &v, nil
	}
}

// computeIPO is the Institutional Participation Overlay calculator: the
// dual-filter fraction of stocks whose relative volume exceeds BOTH
// their own per-stock threshold (Q90 if supplied, else the fixed
// fallback 2.0) AND the cross-sectional median. Absent iff n == 0.
//
// The AND is load-bearing: the own-history test alone is heterogeneous
// across stocks, and the cross-section test alone saturates on
// market-wide stress days when every stock looks abnormal. Either test
// in isolation changes the sensitivity profile and is a regression.
func computeIPO(relVol, relVolQ90 []float64, universeMedian *float64) (*float64, error) {
	n := len(relVol)
	if n == 0 {
		return nil, nil
	}
	for i, v := range relVol {
		if err := requireFinite("rel_vol", v); err != nil {
			return nil, err
		}
		if relVolQ90 != nil && i < len(relVolQ90) {
			if err := requireFinite("rel_vol_q90", relVolQ90[i]); err != nil {
				return nil, err
			}
		}
	}

	median := 0.0
	if universeMedian != nil {
		if err := requireFinite("universe_median", *universeMedian); err != nil {
			return nil, err
		}
		median = *universeMedian
	} else {
		median = computeMedian(relVol)
	}

	spikes := 0
	for i, v := range relVol {
		threshold := IPOFallbackThresh
		if relVolQ90 != nil && i < len(relVolQ90) {
			threshold = relVolQ90[i]
		}
		if v > threshold && v > median {
			spikes++
		}
	}

	value := float64(spikes) / float64(n)
	return &value, nil
}

// computeMedian is the standard median: the average of the two middle
// order statistics for even-length input, otherwise the middle value.
func computeMedian(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// DistributionCollapseWarning reports the observed-but-not-scored
// diagnostic: issue breadth so lopsided it suggests a data or market
// anomaly rather than genuine breadth. It never feeds the score.
func DistributionCollapseWarning(nAdv, nDec *int64) bool {
	if nAdv == nil || nDec == nil {
		return false
	}
	total := *nAdv + *nDec
	if total == 0 {
		return false
	}
	ratio := float64(*nAdv) / float64(total)
	return ratio > 0.90 || ratio < 0.10
}

func requireFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return newInsufficientInput(field, "non-finite value")
	}
	return nil
}
