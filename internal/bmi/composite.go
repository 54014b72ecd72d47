package bmi

// ComputeComposite builds the raw composite score from a ZScoreSet:
// raw_composite = Σ weight_F · z_F over present features only.
//
// Missing features are deliberately NOT compensated by renormalizing the
// remaining weights against their sum. A partial baseline therefore
// produces a smaller-magnitude composite — the conservative stance that
// less confidence should mean less deviation from neutral, not more.
func ComputeComposite(zscores ZScoreSet, fv FeatureVector) (float64, []ScoreComponent) {
	var composite float64
	components := make([]ScoreComponent, 0, len(FeatureOrder))

	for _, name := range FeatureOrder {
		z, present := zscores[name]
		if !present {
			continue
		}
		weight := Weights[name]
		contribution := weight * z
		composite += contribution

		rawValue, _ := fv.Get(name)
		components = append(components, ScoreComponent{
			Name:         name,
			Weight:       weight,
			RawValue:     rawValue,
			ZScore:       z,
			Contribution: contribution,
		})
	}

	return composite, components
}
