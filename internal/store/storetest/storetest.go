// Package storetest holds the conformance suite every store.Store
// implementation must pass. Both the in-memory and the SQLite store run it,
// so the contract stays identical across backends.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rootsofthewild/village-weather/internal/domain"
	"github.com/rootsofthewild/village-weather/internal/store"
)

// Factory builds a fresh, empty store for one subtest.
type Factory func(t *testing.T) store.Store

func periodStart(day int) time.Time {
	return time.Date(2026, time.June, day, 12, 0, 0, 0, time.UTC)
}

func reading(v domain.Village, day int) domain.WeatherReading {
	return domain.WeatherReading{
		Village:       v,
		PeriodStart:   periodStart(day),
		Season:        domain.SeasonSummer,
		Temperature:   domain.Attribute{Label: "70°F", Symbol: "☀️", Value: 70, Probability: 42.5},
		Wind:          domain.Attribute{Label: "Breeze", Symbol: "🍃", Value: 8, Probability: 25},
		Precipitation: domain.Attribute{Label: "Clear", Symbol: "🌞", Probability: 30},
		CreatedAt:     time.Date(2026, time.June, day, 12, 0, 1, 0, time.UTC),
	}
}

// Run executes the full conformance suite against stores built by factory.
func Run(t *testing.T, factory Factory) {
	t.Run("CreateIfAbsent", func(t *testing.T) { testCreateIfAbsent(t, factory) })
	t.Run("CreateIfAbsentConcurrent", func(t *testing.T) { testCreateIfAbsentConcurrent(t, factory) })
	t.Run("FindForPeriod", func(t *testing.T) { testFindForPeriod(t, factory) })
	t.Run("FindForPeriodPostedGate", func(t *testing.T) { testFindForPeriodPostedGate(t, factory) })
	t.Run("RecentBefore", func(t *testing.T) { testRecentBefore(t, factory) })
	t.Run("SetGuaranteedSpecial", func(t *testing.T) { testSetGuaranteedSpecial(t, factory) })
	t.Run("SetGuaranteedSpecialConflict", func(t *testing.T) { testSetGuaranteedSpecialConflict(t, factory) })
	t.Run("MarkPosted", func(t *testing.T) { testMarkPosted(t, factory) })
	t.Run("Ping", func(t *testing.T) { testPing(t, factory) })
}

func testCreateIfAbsent(t *testing.T, factory Factory) {
	st := factory(t)
	ctx := context.Background()
	r := reading(domain.VillageRudania, 10)

	got, created, err := st.CreateIfAbsent(ctx, r)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, r.Temperature, got.Temperature)

	// A second insert for the same key loses and gets the first row back,
	// even with different attribute values.
	loser := r
	loser.Temperature.Label = "90°F"
	got, created, err = st.CreateIfAbsent(ctx, loser)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "70°F", got.Temperature.Label)

	// Same period, different village is a distinct key.
	other := reading(domain.VillageVhintl, 10)
	_, created, err = st.CreateIfAbsent(ctx, other)
	require.NoError(t, err)
	assert.True(t, created)
}

func testCreateIfAbsentConcurrent(t *testing.T, factory Factory) {
	st := factory(t)
	ctx := context.Background()

	const writers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	var wins int

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := reading(domain.VillageInariko, 10)
			r.Temperature.Value = float64(i) // distinct payloads, same key
			_, created, err := st.CreateIfAbsent(ctx, r)
			assert.NoError(t, err)
			if created {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins, "exactly one writer may create the reading")
}

func testFindForPeriod(t *testing.T, factory Factory) {
	st := factory(t)
	ctx := context.Background()
	r := reading(domain.VillageRudania, 10)
	r.Posted = true
	_, _, err := st.CreateIfAbsent(ctx, r)
	require.NoError(t, err)

	start := r.PeriodStart.Add(-time.Hour)
	end := r.PeriodStart.Add(23 * time.Hour)

	got, err := st.FindForPeriod(ctx, domain.VillageRudania, start, end, false)
	require.NoError(t, err)
	assert.True(t, got.PeriodStart.Equal(r.PeriodStart))

	// Range is [start, end): a window ending exactly at the period start
	// excludes it.
	_, err = st.FindForPeriod(ctx, domain.VillageRudania, start, r.PeriodStart, false)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.FindForPeriod(ctx, domain.VillageVhintl, start, end, false)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testFindForPeriodPostedGate(t *testing.T, factory Factory) {
	st := factory(t)
	ctx := context.Background()
	r := reading(domain.VillageInariko, 10) // Posted false
	_, _, err := st.CreateIfAbsent(ctx, r)
	require.NoError(t, err)

	start := r.PeriodStart.Add(-time.Hour)
	end := r.PeriodStart.Add(time.Hour)

	_, err = st.FindForPeriod(ctx, domain.VillageInariko, start, end, true)
	assert.ErrorIs(t, err, store.ErrNotFound, "unposted readings stay invisible to posted reads")

	got, err := st.FindForPeriod(ctx, domain.VillageInariko, start, end, false)
	require.NoError(t, err)
	assert.False(t, got.Posted)

	require.NoError(t, st.MarkPosted(ctx, domain.VillageInariko, r.PeriodStart))

	got, err = st.FindForPeriod(ctx, domain.VillageInariko, start, end, true)
	require.NoError(t, err)
	assert.True(t, got.Posted)
}

func testRecentBefore(t *testing.T, factory Factory) {
	st := factory(t)
	ctx := context.Background()

	for _, day := range []int{10, 12, 11, 13} {
		_, _, err := st.CreateIfAbsent(ctx, reading(domain.VillageVhintl, day))
		require.NoError(t, err)
	}
	// Another village's readings never leak in.
	_, _, err := st.CreateIfAbsent(ctx, reading(domain.VillageRudania, 12))
	require.NoError(t, err)

	got, err := st.RecentBefore(ctx, domain.VillageVhintl, periodStart(13), 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].PeriodStart.Equal(periodStart(12)), "newest first")
	assert.True(t, got[1].PeriodStart.Equal(periodStart(11)))
	assert.True(t, got[2].PeriodStart.Equal(periodStart(10)))

	got, err = st.RecentBefore(ctx, domain.VillageVhintl, periodStart(13), 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = st.RecentBefore(ctx, domain.VillageVhintl, periodStart(10), 3)
	require.NoError(t, err)
	assert.Empty(t, got, "the cutoff itself is excluded")

	got, err = st.RecentBefore(ctx, domain.VillageVhintl, periodStart(13), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testSetGuaranteedSpecial(t *testing.T, factory Factory) {
	st := factory(t)
	ctx := context.Background()

	// A naturally rolled special is replaceable.
	r := reading(domain.VillageRudania, 10)
	r.Special = &domain.Special{Label: "Rainbow", Symbol: "🌈", Probability: "8.0%"}
	_, _, err := st.CreateIfAbsent(ctx, r)
	require.NoError(t, err)

	updated, err := st.SetGuaranteedSpecial(ctx, domain.VillageRudania, r.PeriodStart,
		domain.Special{Label: "Meteor Shower", Symbol: "☄️", Probability: domain.GuaranteedProbability})
	require.NoError(t, err)
	require.NotNil(t, updated.Special)
	assert.Equal(t, "Meteor Shower", updated.Special.Label)
	assert.Equal(t, domain.GuaranteedProbability, updated.Special.Probability)
	assert.True(t, updated.Special.Guaranteed())

	// Missing reading.
	_, err = st.SetGuaranteedSpecial(ctx, domain.VillageRudania, periodStart(20),
		domain.Special{Label: "Aurora", Probability: domain.GuaranteedProbability})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testSetGuaranteedSpecialConflict(t *testing.T, factory Factory) {
	st := factory(t)
	ctx := context.Background()
	r := reading(domain.VillageInariko, 10)
	_, _, err := st.CreateIfAbsent(ctx, r)
	require.NoError(t, err)

	_, err = st.SetGuaranteedSpecial(ctx, domain.VillageInariko, r.PeriodStart,
		domain.Special{Label: "Avalanche", Symbol: "🏔️", Probability: domain.GuaranteedProbability})
	require.NoError(t, err)

	// Second schedule against the same reading reports the holder.
	_, err = st.SetGuaranteedSpecial(ctx, domain.VillageInariko, r.PeriodStart,
		domain.Special{Label: "Aurora", Symbol: "🌌", Probability: domain.GuaranteedProbability})

	var conflict *store.SpecialConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "Avalanche", conflict.Existing)
	assert.Equal(t, domain.VillageInariko, conflict.Village)
	assert.Contains(t, conflict.Error(), "Avalanche")
}

func testMarkPosted(t *testing.T, factory Factory) {
	st := factory(t)
	ctx := context.Background()
	r := reading(domain.VillageVhintl, 10)
	_, _, err := st.CreateIfAbsent(ctx, r)
	require.NoError(t, err)

	require.NoError(t, st.MarkPosted(ctx, domain.VillageVhintl, r.PeriodStart))
	// Idempotent.
	require.NoError(t, st.MarkPosted(ctx, domain.VillageVhintl, r.PeriodStart))

	err = st.MarkPosted(ctx, domain.VillageVhintl, periodStart(20))
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func testPing(t *testing.T, factory Factory) {
	st := factory(t)
	assert.NoError(t, st.Ping(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, st.Ping(ctx))
}
