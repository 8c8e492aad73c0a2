package domain

import "fmt"

// Rand is the source of randomness for attribute selection. *rand.Rand from
// math/rand/v2 satisfies it; tests inject a scripted implementation.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// Selection accumulates the axes chosen so far within one generation pass,
// in roll order. Later axes evaluate their conditions against it.
type Selection struct {
	Temperature   *Candidate
	Wind          *Candidate
	Precipitation *Candidate
}

// pickWeighted draws one candidate proportionally to its weight, optionally
// scaled by modifier. It returns the winner and the probability share
// (percent) it held within cands — the set actually sampled, which may
// already be smoothed or filtered.
//
// An empty candidate set is a configuration error. A non-positive total
// weight falls back to a uniform pick rather than silently returning nothing.
func pickWeighted(cands []Candidate, modifier func(Candidate) float64, rng Rand) (Candidate, float64, error) {
	if len(cands) == 0 {
		return Candidate{}, 0, ErrNoCandidates
	}

	weights := make([]float64, len(cands))
	var total float64
	for i, c := range cands {
		w := c.Weight
		if modifier != nil {
			w *= modifier(c)
		}
		if w < 0 {
			w = 0
		}
		weights[i] = w
		total += w
	}

	if total <= 0 {
		i := rng.IntN(len(cands))
		return cands[i], 100 / float64(len(cands)), nil
	}

	draw := rng.Float64() * total
	var cum float64
	for i, w := range weights {
		cum += w
		if draw < cum {
			return cands[i], weights[i] / total * 100, nil
		}
	}
	// draw == total can be reached through floating-point accumulation.
	last := len(cands) - 1
	return cands[last], weights[last] / total * 100, nil
}

// eligible reports whether every condition on c holds against sel.
// Conditions are conjunctive; a candidate with none is always eligible.
func (c Candidate) eligible(sel Selection) bool {
	for _, cond := range c.Conditions {
		if !cond.holds(sel) {
			return false
		}
	}
	return true
}

func (cond Condition) holds(sel Selection) bool {
	switch cond.Axis {
	case AxisTemperature:
		return sel.Temperature == nil || cond.compare(sel.Temperature.Value)
	case AxisWind:
		return sel.Wind == nil || cond.compare(sel.Wind.Value)
	case AxisPrecipitation:
		if sel.Precipitation == nil {
			return true
		}
		return cond.Op == OpIs && sel.Precipitation.Label == cond.Label
	default:
		return false
	}
}

func (cond Condition) compare(v float64) bool {
	switch cond.Op {
	case OpAtLeast:
		return v >= cond.Value
	case OpAtMost:
		return v <= cond.Value
	default:
		return false
	}
}

// filterEligible keeps candidates whose conditions hold against sel. When
// filtering would eliminate every candidate the unfiltered list is returned:
// inter-attribute consistency is best-effort, not a hard contract.
func filterEligible(cands []Candidate, sel Selection) []Candidate {
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if c.eligible(sel) {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return cands
	}
	return out
}

// formatPercent renders a probability share for storage on a Special.
func formatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}
