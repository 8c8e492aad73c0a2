package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func referenceLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(DefaultTimezone)
	require.NoError(t, err)
	return loc
}

func TestPeriodAt_AfterCutover(t *testing.T) {
	loc := referenceLocation(t)
	now := time.Date(2026, time.June, 10, 14, 30, 0, 0, loc)

	p, err := PeriodAt(now, loc, DefaultCutoverHour)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, time.June, 10, 8, 0, 0, 0, loc), p.Start)
	assert.Equal(t, time.Date(2026, time.June, 11, 8, 0, 0, 0, loc), p.End)
	assert.True(t, p.Contains(now))
}

func TestPeriodAt_BeforeCutoverBelongsToPreviousDay(t *testing.T) {
	loc := referenceLocation(t)
	now := time.Date(2026, time.June, 10, 7, 59, 59, 0, loc)

	p, err := PeriodAt(now, loc, DefaultCutoverHour)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, time.June, 9, 8, 0, 0, 0, loc), p.Start)
	assert.True(t, p.Contains(now))
}

func TestPeriodAt_ExactCutoverStartsNewPeriod(t *testing.T) {
	loc := referenceLocation(t)
	now := time.Date(2026, time.June, 10, 8, 0, 0, 0, loc)

	p, err := PeriodAt(now, loc, DefaultCutoverHour)
	require.NoError(t, err)

	assert.Equal(t, now, p.Start)
}

func TestPeriodAt_UTCInputNormalizedToReferenceTime(t *testing.T) {
	loc := referenceLocation(t)
	// 11:00 UTC in June is 07:00 EDT, so this instant still belongs to the
	// previous day's period.
	now := time.Date(2026, time.June, 10, 11, 0, 0, 0, time.UTC)

	p, err := PeriodAt(now, loc, DefaultCutoverHour)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, time.June, 9, 8, 0, 0, 0, loc), p.Start)
	assert.True(t, p.Contains(now))
}

func TestPeriodAt_SpringForwardKeepsExactDuration(t *testing.T) {
	loc := referenceLocation(t)
	// DST starts 2026-03-08 in America/New_York. A period straddling the
	// transition is still exactly 24h of elapsed time even though wall
	// clocks skip an hour.
	now := time.Date(2026, time.March, 7, 12, 0, 0, 0, loc)

	p, err := PeriodAt(now, loc, DefaultCutoverHour)
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, p.End.Sub(p.Start))
	assert.Equal(t, 9, p.End.In(loc).Hour(), "end drifts to 09:00 local across spring-forward")
}

func TestPeriodAt_FallBackKeepsExactDuration(t *testing.T) {
	loc := referenceLocation(t)
	// DST ends 2026-11-01; the repeated hour means 24h of elapsed time
	// lands at 07:00 local.
	now := time.Date(2026, time.October, 31, 12, 0, 0, 0, loc)

	p, err := PeriodAt(now, loc, DefaultCutoverHour)
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, p.End.Sub(p.Start))
	assert.Equal(t, 7, p.End.In(loc).Hour(), "end drifts to 07:00 local across fall-back")
}

func TestPeriodAt_InvalidInputs(t *testing.T) {
	loc := referenceLocation(t)
	now := time.Date(2026, time.June, 10, 12, 0, 0, 0, loc)

	_, err := PeriodAt(now, nil, DefaultCutoverHour)
	assert.Error(t, err)

	_, err = PeriodAt(now, loc, -1)
	assert.Error(t, err)

	_, err = PeriodAt(now, loc, 24)
	assert.Error(t, err)

	_, err = PeriodAt(time.Time{}, loc, DefaultCutoverHour)
	assert.Error(t, err)
}

func TestNextPeriodAt_IsCurrentShiftedByExactly24Hours(t *testing.T) {
	loc := referenceLocation(t)
	for _, now := range []time.Time{
		time.Date(2026, time.June, 10, 14, 30, 0, 0, loc),
		time.Date(2026, time.June, 10, 3, 0, 0, 0, loc),
		time.Date(2026, time.March, 7, 23, 0, 0, 0, loc),  // spring-forward eve
		time.Date(2026, time.October, 31, 23, 0, 0, 0, loc), // fall-back eve
	} {
		current, err := PeriodAt(now, loc, DefaultCutoverHour)
		require.NoError(t, err)
		next, err := NextPeriodAt(now, loc, DefaultCutoverHour)
		require.NoError(t, err)

		assert.Equal(t, current.Start.Add(24*time.Hour), next.Start, "now=%v", now)
		assert.Equal(t, current.End.Add(24*time.Hour), next.End, "now=%v", now)
		assert.Equal(t, current.End, next.Start, "periods must abut, now=%v", now)
	}
}

func TestPeriod_Contains(t *testing.T) {
	loc := referenceLocation(t)
	start := time.Date(2026, time.June, 10, 8, 0, 0, 0, loc)
	p := Period{Start: start, End: start.Add(24 * time.Hour)}

	assert.True(t, p.Contains(start), "start is inclusive")
	assert.True(t, p.Contains(start.Add(23*time.Hour)))
	assert.False(t, p.Contains(p.End), "end is exclusive")
	assert.False(t, p.Contains(start.Add(-time.Second)))
}
