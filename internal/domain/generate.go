package domain

import (
	"errors"
	"fmt"
)

// DefaultSpecialChance is the bernoulli gate applied before rolling the
// special axis; most periods have no special condition.
const DefaultSpecialChance = 0.3

// GenerateInput carries everything needed to roll one reading.
type GenerateInput struct {
	Village Village
	Period  Period
	Season  Season
	Table   SeasonTable

	// History holds the most recent stored readings for the village,
	// newest first. At most three are consulted.
	History []WeatherReading

	// SpecialChance gates the special axis; zero disables specials
	// entirely, values are clamped to [0, 1].
	SpecialChance float64

	// Posted marks whether the reading is immediately visible to
	// current-weather consumers.
	Posted bool
}

// Generate rolls a complete weather reading for one village and period.
// Axes are selected in order temperature → wind → precipitation → special:
// precipitation candidates are filtered by the temperature and wind already
// chosen, special candidates by all three. Generation is all-or-nothing —
// if any required axis cannot be resolved, no partial reading is returned.
func Generate(in GenerateInput, rng Rand) (WeatherReading, error) {
	if rng == nil {
		return WeatherReading{}, errors.New("generate: rng is required")
	}
	if in.Period.Start.IsZero() {
		return WeatherReading{}, errors.New("generate: period is required")
	}

	history := trimHistory(in.History)
	var sel Selection

	temp, tempProb, err := pickWeighted(SmoothTemperatures(in.Table.Temperatures, history), nil, rng)
	if err != nil {
		return WeatherReading{}, fmt.Errorf("generate %s/%s temperature: %w", in.Village, in.Season, err)
	}
	sel.Temperature = &temp

	wind, windProb, err := pickWeighted(SmoothWinds(in.Table.Winds, history), nil, rng)
	if err != nil {
		return WeatherReading{}, fmt.Errorf("generate %s/%s wind: %w", in.Village, in.Season, err)
	}
	sel.Wind = &wind

	precip, precipProb, err := pickWeighted(filterEligible(in.Table.Precipitation, sel), nil, rng)
	if err != nil {
		return WeatherReading{}, fmt.Errorf("generate %s/%s precipitation: %w", in.Village, in.Season, err)
	}
	sel.Precipitation = &precip

	reading := WeatherReading{
		Village:       in.Village,
		PeriodStart:   in.Period.Start,
		Season:        in.Season,
		Temperature:   attribute(temp, tempProb),
		Wind:          attribute(wind, windProb),
		Precipitation: attribute(precip, precipProb),
		Posted:        in.Posted,
		CreatedAt:     clock.Now(),
	}

	chance := min(max(in.SpecialChance, 0), 1)
	if len(in.Table.Specials) > 0 && chance > 0 && rng.Float64() < chance {
		special, specialProb, err := pickWeighted(filterEligible(in.Table.Specials, sel), nil, rng)
		if err != nil {
			return WeatherReading{}, fmt.Errorf("generate %s/%s special: %w", in.Village, in.Season, err)
		}
		reading.Special = &Special{
			Label:       special.Label,
			Symbol:      special.Symbol,
			Probability: formatPercent(specialProb),
		}
	}

	return reading, nil
}

func attribute(c Candidate, prob float64) Attribute {
	return Attribute{
		Label:       c.Label,
		Symbol:      c.Symbol,
		Value:       c.Value,
		Probability: prob,
	}
}
