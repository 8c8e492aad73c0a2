package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPeriod(t *testing.T) Period {
	t.Helper()
	loc, err := time.LoadLocation(DefaultTimezone)
	require.NoError(t, err)
	start := time.Date(2026, time.January, 10, DefaultCutoverHour, 0, 0, 0, loc)
	return Period{Start: start, End: start.Add(24 * time.Hour)}
}

func testTable() SeasonTable {
	return SeasonTable{
		Temperatures: []Candidate{
			{Label: "20°F", Symbol: "❄️", Value: 20, Weight: 50},
			{Label: "30°F", Symbol: "🌨️", Value: 30, Weight: 50},
		},
		Winds: []Candidate{
			{Label: "Calm", Value: 2, Weight: 50},
			{Label: "Breeze", Value: 8, Weight: 50},
		},
		Precipitation: []Candidate{
			{Label: "Clear", Symbol: "☀️", Weight: 50},
			{Label: "Snow", Symbol: "🌨️", Weight: 50,
				Conditions: []Condition{{Axis: AxisTemperature, Op: OpAtMost, Value: 32}}},
		},
		Specials: []Candidate{
			{Label: "Aurora", Symbol: "🌌", Weight: 100},
		},
	}
}

func TestGenerate_RollsAllAxes(t *testing.T) {
	in := GenerateInput{
		Village:       VillageInariko,
		Period:        testPeriod(t),
		Season:        SeasonWinter,
		Table:         testTable(),
		SpecialChance: 0, // keep the special axis quiet here
	}
	// One draw per axis: low picks the first candidate each time.
	rng := &scriptedRand{floats: []float64{0.1, 0.1, 0.1}}

	r, err := Generate(in, rng)
	require.NoError(t, err)

	assert.Equal(t, VillageInariko, r.Village)
	assert.Equal(t, in.Period.Start, r.PeriodStart)
	assert.Equal(t, SeasonWinter, r.Season)
	assert.Equal(t, "20°F", r.Temperature.Label)
	assert.InDelta(t, 50.0, r.Temperature.Probability, 0.001)
	assert.Equal(t, "Calm", r.Wind.Label)
	assert.Equal(t, "Clear", r.Precipitation.Label)
	assert.Nil(t, r.Special)
	assert.False(t, r.Posted)
}

func TestGenerate_CreatedAtComesFromClock(t *testing.T) {
	at := time.Date(2026, time.January, 10, 9, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(at))
	defer SetClock(nil)

	in := GenerateInput{
		Village: VillageVhintl,
		Period:  testPeriod(t),
		Season:  SeasonWinter,
		Table:   testTable(),
	}

	r, err := Generate(in, &scriptedRand{floats: []float64{0.1, 0.1, 0.1, 0.99}})
	require.NoError(t, err)
	assert.Equal(t, at, r.CreatedAt)
}

func TestGenerate_AllOrNothingOnMissingAxis(t *testing.T) {
	table := testTable()
	table.Winds = nil

	in := GenerateInput{
		Village: VillageRudania,
		Period:  testPeriod(t),
		Season:  SeasonWinter,
		Table:   table,
	}

	_, err := Generate(in, &scriptedRand{floats: []float64{0.1, 0.1, 0.1}})
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestGenerate_InputValidation(t *testing.T) {
	in := GenerateInput{
		Village: VillageRudania,
		Period:  testPeriod(t),
		Season:  SeasonWinter,
		Table:   testTable(),
	}

	_, err := Generate(in, nil)
	assert.Error(t, err)

	in.Period = Period{}
	_, err = Generate(in, &scriptedRand{})
	assert.Error(t, err)
}

func TestGenerate_SmoothingExcludesImplausibleJumps(t *testing.T) {
	table := testTable()
	table.Temperatures = []Candidate{
		{Label: "85°F", Value: 85, Weight: 1},
		{Label: "150°F", Value: 150, Weight: 1000},
	}
	history := []WeatherReading{
		{Temperature: Attribute{Value: 80}, Wind: Attribute{Label: "Calm"}},
	}

	in := GenerateInput{
		Village: VillageRudania,
		Period:  testPeriod(t),
		Season:  SeasonSummer,
		Table:   table,
		History: history,
	}

	// Whatever the draw, 150°F is more than 20°F from the previous 80°F
	// and must never be selected.
	for _, f := range []float64{0.0, 0.25, 0.5, 0.75, 0.999} {
		r, err := Generate(in, &scriptedRand{floats: []float64{f, 0.1, 0.1, 0.99}})
		require.NoError(t, err)
		assert.Equal(t, "85°F", r.Temperature.Label, "draw %v", f)
	}
}

func TestGenerate_PrecipitationFilteredByEarlierAxes(t *testing.T) {
	table := testTable()
	// Force 30°F (second temperature candidate) then check Snow remains
	// eligible; then force a warm table and check it is filtered out.
	in := GenerateInput{
		Village: VillageInariko,
		Period:  testPeriod(t),
		Season:  SeasonWinter,
		Table:   table,
	}

	r, err := Generate(in, &scriptedRand{floats: []float64{0.9, 0.1, 0.9, 0.99}})
	require.NoError(t, err)
	assert.Equal(t, "30°F", r.Temperature.Label)
	assert.Equal(t, "Snow", r.Precipitation.Label)

	warm := table
	warm.Temperatures = []Candidate{{Label: "70°F", Value: 70, Weight: 100}}
	in.Table = warm

	// Snow's temp<=32 condition fails at 70°F, so even a high draw lands
	// on Clear, the only eligible candidate.
	r, err = Generate(in, &scriptedRand{floats: []float64{0.5, 0.1, 0.9, 0.99}})
	require.NoError(t, err)
	assert.Equal(t, "Clear", r.Precipitation.Label)
}

func TestGenerate_SpecialGate(t *testing.T) {
	in := GenerateInput{
		Village:       VillageVhintl,
		Period:        testPeriod(t),
		Season:        SeasonWinter,
		Table:         testTable(),
		SpecialChance: 0.3,
	}

	// Gate draw 0.29 < 0.3: special rolls.
	r, err := Generate(in, &scriptedRand{floats: []float64{0.1, 0.1, 0.1, 0.29, 0.5}})
	require.NoError(t, err)
	require.NotNil(t, r.Special)
	assert.Equal(t, "Aurora", r.Special.Label)
	assert.Equal(t, "100.0%", r.Special.Probability)
	assert.False(t, r.Special.Guaranteed())

	// Gate draw 0.3 is not below the chance: no special.
	r, err = Generate(in, &scriptedRand{floats: []float64{0.1, 0.1, 0.1, 0.3}})
	require.NoError(t, err)
	assert.Nil(t, r.Special)
}

func TestGenerate_ZeroChanceNeverRollsSpecial(t *testing.T) {
	in := GenerateInput{
		Village:       VillageVhintl,
		Period:        testPeriod(t),
		Season:        SeasonWinter,
		Table:         testTable(),
		SpecialChance: 0,
	}

	r, err := Generate(in, &scriptedRand{floats: []float64{0.1, 0.1, 0.1, 0.0}})
	require.NoError(t, err)
	assert.Nil(t, r.Special)
}

func TestGenerate_EmptySpecialListSkipsAxis(t *testing.T) {
	table := testTable()
	table.Specials = nil

	in := GenerateInput{
		Village:       VillageVhintl,
		Period:        testPeriod(t),
		Season:        SeasonWinter,
		Table:         table,
		SpecialChance: 1,
	}

	r, err := Generate(in, &scriptedRand{floats: []float64{0.1, 0.1, 0.1}})
	require.NoError(t, err)
	assert.Nil(t, r.Special)
}
