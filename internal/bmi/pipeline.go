package bmi

import "time"

// Calculate is the core's single synchronous entry point. It is a pure
// function of its two arguments: given the same inputs and the same
// history, it always returns a bit-identical BMIResult (invariant I7).
//
// Internally it rebuilds the four RollingBaseline instances and the
// CompositeHistory from history on every call rather than carrying
// incremental state across invocations, per the re-entry rule in
// spec.md §5: recompute from the canonical history, don't trust stale
// state. history must contain only rows strictly earlier than
// inputs.Date — this is what guarantees a day is never in its own
// baseline.
func Calculate(inputs FeatureInputs, history HistoryView) (BMIResult, error) {
	if err := validateHistory(history, inputs.Date); err != nil {
		return BMIResult{}, err
	}

	baselines := rebuildBaselines(history)
	compositeHistory := rebuildCompositeHistory(history)

	fv, err := ComputeFeatures(inputs)
	if err != nil {
		return BMIResult{}, err
	}

	zscores, excluded, status := Normalize(fv, baselines)
	composite, components := ComputeComposite(zscores, fv)
	score := BoundToScore(composite, compositeHistory)
	band := ClassifyBand(score)
	explanation := GenerateExplanation(band, components, excluded, status)

	return BMIResult{
		Date:             inputs.Date,
		Score:            score,
		Band:             band,
		RawComposite:     composite,
		Status:           status,
		ExcludedFeatures: excluded,
		Components:       components,
		Explanation:      explanation,
	}, nil
}

// AppendHistory returns history with today's row appended (or, if a row
// for inputs.Date already exists, replaced — last-writer-wins, so
// re-running Calculate for the same date and re-appending is
// idempotent). This is the caller's responsibility: the core itself
// never mutates history, only consumes it.
func AppendHistory(history HistoryView, inputs FeatureInputs, fv FeatureVector, result BMIResult) HistoryView {
	row := HistoryRow{
		Date:         inputs.Date,
		VPB:          fv.VPB,
		IPB:          fv.IPB,
		SBC:          fv.SBC,
		IPO:          fv.IPO,
		RawComposite: &result.RawComposite,
	}
	if len(result.Components) > 0 {
		row.Components = make(map[FeatureName]ComponentValues, len(result.Components))
		for _, c := range result.Components {
			row.Components[c.Name] = ComponentValues{ZScore: c.ZScore, Contribution: c.Contribution}
		}
	}
	score, band, status, explanation := result.Score, result.Band, result.Status, result.Explanation
	row.Score = &score
	row.Band = &band
	row.Status = &status
	row.Explanation = &explanation

	out := make(HistoryView, 0, len(history)+1)
	for _, r := range history {
		if r.Date.Equal(inputs.Date) {
			continue
		}
		out = append(out, r)
	}
	out = append(out, row)
	return out
}

func validateHistory(history HistoryView, asOf time.Time) error {
	var prev time.Time
	for i, row := range history {
		if !row.Date.Before(asOf) {
			return newHistoryConsistency("history row not strictly earlier than the scoring date")
		}
		if i > 0 && !row.Date.After(prev) {
			return newHistoryConsistency("history rows out of date order")
		}
		for _, v := range []*float64{row.VPB, row.IPB, row.SBC, row.IPO, row.RawComposite} {
			if v == nil {
				continue
			}
			if err := requireFinite("history value", *v); err != nil {
				return newHistoryConsistency("history contains a non-finite raw value")
			}
		}
		prev = row.Date
	}
	return nil
}

func rebuildBaselines(history HistoryView) *Baselines {
	baselines := NewBaselines()
	for _, row := range history {
		fv := FeatureVector{VPB: row.VPB, IPB: row.IPB, SBC: row.SBC, IPO: row.IPO}
		// Errors are unreachable here: validateHistory already rejected
		// non-finite values and non-monotonic ordering above.
		_ = baselines.Append(row.Date, fv)
	}
	return baselines
}

func rebuildCompositeHistory(history HistoryView) *CompositeHistory {
	ch := NewCompositeHistory()
	for _, row := range history {
		if row.RawComposite != nil {
			ch.Append(*row.RawComposite)
		}
	}
	return ch
}
