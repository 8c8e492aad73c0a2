package domain

import "math"

// TemperatureDelta bounds how far the temperature may move between
// consecutive readings, in °F.
const TemperatureDelta = 20.0

// historyWindow is how many prior readings the smoother considers.
const historyWindow = 3

// SmoothTemperatures narrows temperature candidates toward continuity with
// the most recent reading: only values within ±TemperatureDelta of the
// previous temperature survive. When the previous two readings both carried
// a special condition (a severe-weather streak) the bound collapses to zero,
// pinning the temperature for one more period.
//
// With no history, or when narrowing would empty the set, the full season
// list is returned unchanged.
func SmoothTemperatures(cands []Candidate, history []WeatherReading) []Candidate {
	if len(history) == 0 || len(cands) == 0 {
		return cands
	}

	prev := history[0].Temperature.Value
	delta := TemperatureDelta
	if severeStreak(history) {
		delta = 0
	}

	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if math.Abs(c.Value-prev) <= delta {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return cands
	}
	return out
}

// SmoothWinds keeps the previous reading's wind candidate and its immediate
// neighbors in the season's ordered intensity list, so wind moves at most
// one step per period. An unknown previous label (season rollover changed
// the list) disables narrowing.
func SmoothWinds(cands []Candidate, history []WeatherReading) []Candidate {
	if len(history) == 0 || len(cands) == 0 {
		return cands
	}

	prev := history[0].Wind.Label
	idx := -1
	for i, c := range cands {
		if c.Label == prev {
			idx = i
			break
		}
	}
	if idx < 0 {
		return cands
	}

	lo := max(0, idx-1)
	hi := min(len(cands), idx+2)
	return cands[lo:hi]
}

// severeStreak reports whether the two most recent readings both carried a
// special condition. Specials are rare, so two in a row marks unusual
// weather worth holding steady.
func severeStreak(history []WeatherReading) bool {
	return len(history) >= 2 && history[0].Special != nil && history[1].Special != nil
}

// trimHistory caps the history feed at the smoother's window, most recent
// first.
func trimHistory(history []WeatherReading) []WeatherReading {
	if len(history) > historyWindow {
		return history[:historyWindow]
	}
	return history
}
