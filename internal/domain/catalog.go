package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoCandidates marks an empty or missing candidate set: bad static
// configuration, fatal and never retried.
var ErrNoCandidates = errors.New("no candidates configured")

// Axis identifies one weather attribute dimension.
type Axis string

const (
	AxisTemperature   Axis = "temperature"
	AxisWind          Axis = "wind"
	AxisPrecipitation Axis = "precipitation"
	AxisSpecial       Axis = "special"
)

// Op is a comparison operator used in candidate conditions.
type Op string

const (
	OpAtLeast Op = "gte" // numeric threshold, temperature or wind
	OpAtMost  Op = "lte" // numeric threshold, temperature or wind
	OpIs      Op = "eq"  // label equality, precipitation only
)

// Condition restricts a candidate's eligibility against axes chosen earlier
// in the roll. Conditions on one candidate are conjunctive.
type Condition struct {
	Axis  Axis
	Op    Op
	Value float64 // threshold for OpAtLeast/OpAtMost
	Label string  // required label for OpIs
}

// Candidate is one selectable weather value: display label and symbol, the
// numeric magnitude smoothing works with (°F for temperature, mph for wind),
// a selection weight, and optional eligibility conditions.
type Candidate struct {
	Label      string
	Symbol     string
	Value      float64
	Weight     float64
	Conditions []Condition
}

// SeasonTable holds one season's candidate lists for a village.
// Temperatures and Winds are ordered by ascending Value; the wind order
// drives adjacency smoothing.
type SeasonTable struct {
	Temperatures  []Candidate
	Winds         []Candidate
	Precipitation []Candidate
	Specials      []Candidate
}

// Catalog maps villages to their per-season candidate tables. It is static
// configuration data, loaded once and never mutated.
type Catalog map[Village]map[Season]SeasonTable

// Table returns the candidate table for a village and season. A missing
// entry is a configuration error.
func (c Catalog) Table(v Village, s Season) (SeasonTable, error) {
	seasons, ok := c[v]
	if !ok {
		return SeasonTable{}, fmt.Errorf("catalog: village %q: %w", v, ErrNoCandidates)
	}
	table, ok := seasons[s]
	if !ok {
		return SeasonTable{}, fmt.Errorf("catalog: village %q season %q: %w", v, s, ErrNoCandidates)
	}
	return table, nil
}

// FindSpecial looks a special candidate up by label across a village's
// seasons, preferring the given season. The scheduler uses it to resolve a
// label into its display symbol.
func (c Catalog) FindSpecial(v Village, s Season, label string) (Candidate, error) {
	seasons, ok := c[v]
	if !ok {
		return Candidate{}, fmt.Errorf("catalog: village %q: %w", v, ErrNoCandidates)
	}
	if table, ok := seasons[s]; ok {
		for _, cand := range table.Specials {
			if cand.Label == label {
				return cand, nil
			}
		}
	}
	for _, table := range seasons {
		for _, cand := range table.Specials {
			if cand.Label == label {
				return cand, nil
			}
		}
	}
	return Candidate{}, fmt.Errorf("catalog: village %q has no special %q", v, label)
}

// --- built-in catalog data ---

// temperatureLadder is the master temperature scale shared by all villages.
// Per-table lists are cut from it around a seasonal mean.
var temperatureLadder = []Candidate{
	{Label: "-10°F", Symbol: "🥶", Value: -10},
	{Label: "0°F", Symbol: "🥶", Value: 0},
	{Label: "10°F", Symbol: "❄️", Value: 10},
	{Label: "20°F", Symbol: "❄️", Value: 20},
	{Label: "30°F", Symbol: "🌨️", Value: 30},
	{Label: "40°F", Symbol: "🌡️", Value: 40},
	{Label: "50°F", Symbol: "🌡️", Value: 50},
	{Label: "60°F", Symbol: "🌤️", Value: 60},
	{Label: "70°F", Symbol: "☀️", Value: 70},
	{Label: "80°F", Symbol: "☀️", Value: 80},
	{Label: "90°F", Symbol: "🔥", Value: 90},
	{Label: "100°F", Symbol: "🔥", Value: 100},
	{Label: "110°F", Symbol: "🔥", Value: 110},
}

// tempsAround cuts the ladder to mean±spread with weights peaking at the
// mean and tapering toward the edges.
func tempsAround(mean, spread float64) []Candidate {
	out := make([]Candidate, 0, len(temperatureLadder))
	for _, c := range temperatureLadder {
		d := math.Abs(c.Value - mean)
		if d > spread {
			continue
		}
		c.Weight = math.Max(1, 10-9*d/spread)
		out = append(out, c)
	}
	return out
}

// windScale is the ordered wind-intensity list, calm to violent. Adjacency
// smoothing depends on this order.
func windScale() []Candidate {
	return []Candidate{
		{Label: "Calm", Symbol: "🍃", Value: 2, Weight: 30},
		{Label: "Breeze", Symbol: "🍃", Value: 8, Weight: 25},
		{Label: "Moderate", Symbol: "🌬️", Value: 15, Weight: 20},
		{Label: "Strong", Symbol: "💨", Value: 25, Weight: 12},
		{Label: "Gale", Symbol: "💨", Value: 40, Weight: 8},
		{Label: "Storm", Symbol: "🌪️", Value: 60, Weight: 5},
	}
}

func tempAtMost(v float64) Condition  { return Condition{Axis: AxisTemperature, Op: OpAtMost, Value: v} }
func tempAtLeast(v float64) Condition { return Condition{Axis: AxisTemperature, Op: OpAtLeast, Value: v} }
func windAtMost(v float64) Condition  { return Condition{Axis: AxisWind, Op: OpAtMost, Value: v} }
func windAtLeast(v float64) Condition { return Condition{Axis: AxisWind, Op: OpAtLeast, Value: v} }
func precipIs(label string) Condition {
	return Condition{Axis: AxisPrecipitation, Op: OpIs, Label: label}
}

// Shared precipitation candidates. Threshold conditions keep rolls
// physically plausible (snow needs freezing air, a blizzard needs wind).
var (
	pClear        = Candidate{Label: "Clear", Symbol: "🌞", Weight: 25}
	pPartlyCloudy = Candidate{Label: "Partly Cloudy", Symbol: "⛅", Weight: 20}
	pCloudy       = Candidate{Label: "Cloudy", Symbol: "☁️", Weight: 15}
	pFog          = Candidate{Label: "Fog", Symbol: "🌫️", Weight: 8, Conditions: []Condition{windAtMost(8)}}
	pLightRain    = Candidate{Label: "Light Rain", Symbol: "🌦️", Weight: 12, Conditions: []Condition{tempAtLeast(33)}}
	pRain         = Candidate{Label: "Rain", Symbol: "🌧️", Weight: 10, Conditions: []Condition{tempAtLeast(33)}}
	pHeavyRain    = Candidate{Label: "Heavy Rain", Symbol: "🌧️", Weight: 6, Conditions: []Condition{tempAtLeast(33), windAtLeast(8)}}
	pThunderstorm = Candidate{Label: "Thunderstorm", Symbol: "⛈️", Weight: 5, Conditions: []Condition{tempAtLeast(40), windAtLeast(15)}}
	pSleet        = Candidate{Label: "Sleet", Symbol: "🌨️", Weight: 6, Conditions: []Condition{tempAtMost(36)}}
	pSnow         = Candidate{Label: "Snow", Symbol: "❄️", Weight: 12, Conditions: []Condition{tempAtMost(32)}}
	pBlizzard     = Candidate{Label: "Blizzard", Symbol: "🌬️", Weight: 4, Conditions: []Condition{tempAtMost(25), windAtLeast(40)}}
)

func precipTemperate() []Candidate {
	return []Candidate{pClear, pPartlyCloudy, pCloudy, pFog, pLightRain, pRain, pHeavyRain, pThunderstorm}
}

func precipCold() []Candidate {
	return []Candidate{pClear, pPartlyCloudy, pCloudy, pFog, pSleet, pSnow, pBlizzard, pLightRain}
}

func precipWet() []Candidate {
	return []Candidate{pClear, pPartlyCloudy, pCloudy, pFog, pLightRain, pRain, pHeavyRain, pThunderstorm}
}

func special(label, symbol string, weight float64, conds ...Condition) Candidate {
	return Candidate{Label: label, Symbol: symbol, Weight: weight, Conditions: conds}
}

// DefaultCatalog returns the built-in candidate tables for every village and
// season. cmd/validate checks the result's integrity.
func DefaultCatalog() Catalog {
	meteorShower := special("Meteor Shower", "☄️", 5, precipIs("Clear"))
	rainbow := special("Rainbow", "🌈", 8, precipIs("Rain"))
	flowerBloom := special("Flower Bloom", "🌸", 10, windAtMost(15))
	fairyCircle := special("Fairy Circle", "🍄", 6)
	muggy := special("Muggy", "🐸", 8, tempAtLeast(80))
	drought := special("Drought", "🌵", 6, tempAtLeast(95), precipIs("Clear"))
	rockSlide := special("Rock Slide", "⛏️", 5, windAtLeast(40))
	avalanche := special("Avalanche", "🏔️", 4, tempAtMost(25), windAtLeast(25))
	aurora := special("Aurora", "🌌", 6, tempAtMost(20), precipIs("Clear"))
	diamondDust := special("Diamond Dust", "💎", 5, tempAtMost(10), precipIs("Clear"))
	jubilee := special("Fish Jubilee", "🐟", 6, precipIs("Rain"))
	thunderEcho := special("Thunder Echo", "🔊", 5, precipIs("Thunderstorm"))

	return Catalog{
		// Rudania: volcanic highlands, hot and dry.
		VillageRudania: {
			SeasonSpring: {
				Temperatures:  tempsAround(70, 30),
				Winds:         windScale(),
				Precipitation: precipTemperate(),
				Specials:      []Candidate{flowerBloom, meteorShower, rockSlide, rainbow},
			},
			SeasonSummer: {
				Temperatures:  tempsAround(95, 25),
				Winds:         windScale(),
				Precipitation: precipTemperate(),
				Specials:      []Candidate{drought, meteorShower, rockSlide, muggy},
			},
			SeasonAutumn: {
				Temperatures:  tempsAround(75, 30),
				Winds:         windScale(),
				Precipitation: precipTemperate(),
				Specials:      []Candidate{meteorShower, rockSlide, rainbow},
			},
			SeasonWinter: {
				Temperatures:  tempsAround(50, 30),
				Winds:         windScale(),
				Precipitation: precipTemperate(),
				Specials:      []Candidate{meteorShower, rockSlide, aurora},
			},
		},
		// Inariko: mountain lake, cold and snowy.
		VillageInariko: {
			SeasonSpring: {
				Temperatures:  tempsAround(45, 30),
				Winds:         windScale(),
				Precipitation: precipCold(),
				Specials:      []Candidate{jubilee, rainbow, meteorShower},
			},
			SeasonSummer: {
				Temperatures:  tempsAround(65, 25),
				Winds:         windScale(),
				Precipitation: precipTemperate(),
				Specials:      []Candidate{jubilee, rainbow, meteorShower, muggy},
			},
			SeasonAutumn: {
				Temperatures:  tempsAround(40, 30),
				Winds:         windScale(),
				Precipitation: precipCold(),
				Specials:      []Candidate{aurora, meteorShower, jubilee},
			},
			SeasonWinter: {
				Temperatures:  tempsAround(10, 30),
				Winds:         windScale(),
				Precipitation: precipCold(),
				Specials:      []Candidate{aurora, diamondDust, avalanche, meteorShower},
			},
		},
		// Vhintl: deep forest, humid and wet.
		VillageVhintl: {
			SeasonSpring: {
				Temperatures:  tempsAround(65, 25),
				Winds:         windScale(),
				Precipitation: precipWet(),
				Specials:      []Candidate{flowerBloom, fairyCircle, rainbow, thunderEcho},
			},
			SeasonSummer: {
				Temperatures:  tempsAround(85, 20),
				Winds:         windScale(),
				Precipitation: precipWet(),
				Specials:      []Candidate{muggy, thunderEcho, fairyCircle, rainbow},
			},
			SeasonAutumn: {
				Temperatures:  tempsAround(60, 25),
				Winds:         windScale(),
				Precipitation: precipWet(),
				Specials:      []Candidate{fairyCircle, rainbow, meteorShower},
			},
			SeasonWinter: {
				Temperatures:  tempsAround(40, 25),
				Winds:         windScale(),
				Precipitation: precipCold(),
				Specials:      []Candidate{fairyCircle, aurora, meteorShower},
			},
		},
	}
}
