package domain

import (
	"errors"
	"fmt"
	"time"
)

// Default period boundary policy: weather cuts over at 08:00 in the
// reference timezone, regardless of calendar-day boundaries.
const (
	DefaultTimezone    = "America/New_York"
	DefaultCutoverHour = 8
)

// Period is the fixed 24-hour window one WeatherReading governs.
// Start is inclusive, End exclusive.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls within [Start, End).
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// PeriodAt returns the period containing now. Start is the most recent
// instant at cutoverHour on or before now in reference-local wall time,
// constructed in loc so the UTC offset follows daylight-saving transitions.
// End is always Start + 24h.
//
// An error here indicates an arithmetic bug or broken inputs, never a
// recoverable runtime condition.
func PeriodAt(now time.Time, loc *time.Location, cutoverHour int) (Period, error) {
	if loc == nil {
		return Period{}, errors.New("period: location is required")
	}
	if cutoverHour < 0 || cutoverHour > 23 {
		return Period{}, fmt.Errorf("period: cutover hour %d out of range", cutoverHour)
	}
	if now.IsZero() {
		return Period{}, errors.New("period: zero instant")
	}

	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), cutoverHour, 0, 0, 0, loc)
	if local.Before(start) {
		y, m, d := local.AddDate(0, 0, -1).Date()
		start = time.Date(y, m, d, cutoverHour, 0, 0, 0, loc)
	}
	end := start.Add(24 * time.Hour)

	if !end.After(start) || now.Before(start) || !now.Before(end) {
		return Period{}, fmt.Errorf("period: invalid bounds [%v, %v) for %v", start, end, now)
	}
	return Period{Start: start, End: end}, nil
}

// NextPeriodAt returns the period after the one containing now. It is always
// the current period shifted by exactly 24h, never recomputed independently,
// so current and next can never disagree about where the boundary falls.
func NextPeriodAt(now time.Time, loc *time.Location, cutoverHour int) (Period, error) {
	p, err := PeriodAt(now, loc, cutoverHour)
	if err != nil {
		return Period{}, err
	}
	return Period{
		Start: p.Start.Add(24 * time.Hour),
		End:   p.End.Add(24 * time.Hour),
	}, nil
}
