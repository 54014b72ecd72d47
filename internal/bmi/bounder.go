package bmi

import "math"

// bootstrapMinHistory is the composite-history size below which C5 falls
// back to the sigmoid bootstrap instead of a percentile rank.
const bootstrapMinHistory = 10

// CompositeHistory is a FIFO bounded buffer of past raw composite values,
// capacity RollingWindow, consulted only by the percentile bounder.
type CompositeHistory struct {
	values []float64
}

// NewCompositeHistory builds an empty composite history.
func NewCompositeHistory() *CompositeHistory {
	return &CompositeHistory{}
}

// Append records today's raw composite, dropping the oldest entry once
// capacity is exceeded. Must only be called after today's score has been
// computed.
func (h *CompositeHistory) Append(composite float64) {
	h.values = append(h.values, composite)
	if len(h.values) > RollingWindow {
		h.values = h.values[len(h.values)-RollingWindow:]
	}
}

// Len reports how many composite values are currently held.
func (h *CompositeHistory) Len() int {
	return len(h.values)
}

// BoundToScore is the sole bounding mechanism in the pipeline: it maps an
// unbounded raw composite to a [0,100] score via percentile rank against
// CompositeHistory, inverted so that healthier breadth (higher composite)
// yields a lower, "greener" score. With fewer than bootstrapMinHistory
// observations it falls back to a sigmoid scaling of the composite
// itself. Extreme percentiles (<=1 or >=99) are blended with a
// history-parameterized sigmoid so they never hard-clamp to {0,100}.
func BoundToScore(composite float64, history *CompositeHistory) float64 {
	if history.Len() < bootstrapMinHistory {
		pRaw := sigmoid(composite, 0, 0.5) * 100
		return 100 - pRaw
	}

	p := strictLessPercentile(composite, history.values)

	if p <= 1 || p >= 99 {
		mean := arithmeticMean(history.values)
		std := sampleStd(history.values, mean)
		if std > 0 {
			pSig := sigmoid(composite, mean, 1/std) * 100
			if p <= 1 {
				p = math.Max(1, math.Min(25, pSig))
			} else {
				p = math.Min(99, math.Max(75, pSig))
			}
		}
	}

	return 100 - p
}

// strictLessPercentile is the strict-less rank of value within history,
// mapped to [0,100]: the fraction of historical values strictly below
// value.
func strictLessPercentile(value float64, history []float64) float64 {
	countLess := 0
	for _, h := range history {
		if h < value {
			countLess++
		}
	}
	return (float64(countLess) / float64(len(history))) * 100
}

// sigmoid is the logistic function 1/(1+exp(-steepness*(x-midpoint))).
func sigmoid(x, midpoint, steepness float64) float64 {
	return 1.0 / (1.0 + math.Exp(-steepness*(x-midpoint)))
}
