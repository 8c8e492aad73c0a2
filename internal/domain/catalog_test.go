package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog_CoversEveryVillageAndSeason(t *testing.T) {
	catalog := DefaultCatalog()

	for _, v := range Villages() {
		for _, s := range Seasons() {
			table, err := catalog.Table(v, s)
			require.NoError(t, err, "%s/%s", v, s)
			assert.NotEmpty(t, table.Temperatures, "%s/%s temperatures", v, s)
			assert.NotEmpty(t, table.Winds, "%s/%s winds", v, s)
			assert.NotEmpty(t, table.Precipitation, "%s/%s precipitation", v, s)
			assert.NotEmpty(t, table.Specials, "%s/%s specials", v, s)
		}
	}
}

func TestDefaultCatalog_TemperaturesAndWindsAscend(t *testing.T) {
	catalog := DefaultCatalog()

	for _, v := range Villages() {
		for _, s := range Seasons() {
			table, err := catalog.Table(v, s)
			require.NoError(t, err)
			for i := 1; i < len(table.Temperatures); i++ {
				assert.Greater(t, table.Temperatures[i].Value, table.Temperatures[i-1].Value,
					"%s/%s temperature order at %q", v, s, table.Temperatures[i].Label)
			}
			for i := 1; i < len(table.Winds); i++ {
				assert.Greater(t, table.Winds[i].Value, table.Winds[i-1].Value,
					"%s/%s wind order at %q", v, s, table.Winds[i].Label)
			}
		}
	}
}

func TestCatalog_Table_MissingEntries(t *testing.T) {
	catalog := Catalog{VillageRudania: {SeasonSummer: SeasonTable{}}}

	_, err := catalog.Table(VillageVhintl, SeasonSummer)
	assert.ErrorIs(t, err, ErrNoCandidates)

	_, err = catalog.Table(VillageRudania, SeasonWinter)
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestCatalog_FindSpecial_PrefersGivenSeason(t *testing.T) {
	catalog := DefaultCatalog()

	c, err := catalog.FindSpecial(VillageInariko, SeasonWinter, "Avalanche")
	require.NoError(t, err)
	assert.Equal(t, "Avalanche", c.Label)
	assert.NotEmpty(t, c.Symbol)
}

func TestCatalog_FindSpecial_FallsBackAcrossSeasons(t *testing.T) {
	catalog := DefaultCatalog()

	// Scheduling is allowed to name a special from another season of the
	// same village; the lookup scans all of them.
	var label string
	for s, table := range catalog[VillageRudania] {
		if s == SeasonSummer {
			continue
		}
		if len(table.Specials) > 0 {
			label = table.Specials[0].Label
			break
		}
	}
	require.NotEmpty(t, label)

	c, err := catalog.FindSpecial(VillageRudania, SeasonSummer, label)
	require.NoError(t, err)
	assert.Equal(t, label, c.Label)
}

func TestCatalog_FindSpecial_UnknownLabel(t *testing.T) {
	catalog := DefaultCatalog()

	_, err := catalog.FindSpecial(VillageVhintl, SeasonSpring, "Sharknado")
	assert.Error(t, err)
}

func TestTempsAround_WeightsPeakAtMean(t *testing.T) {
	cands := tempsAround(70, 30)
	require.NotEmpty(t, cands)

	var peak Candidate
	for _, c := range cands {
		assert.GreaterOrEqual(t, c.Value, 40.0)
		assert.LessOrEqual(t, c.Value, 100.0)
		assert.Positive(t, c.Weight)
		if c.Weight > peak.Weight {
			peak = c
		}
	}
	assert.Equal(t, 70.0, peak.Value)
}

func TestWindScale_SharedOrderedList(t *testing.T) {
	scale := windScale()
	require.Len(t, scale, 6)
	assert.Equal(t, "Calm", scale[0].Label)
	assert.Equal(t, "Storm", scale[len(scale)-1].Label)
}
