package domain

import "time"

// Season classifies a calendar date for candidate-table selection. It is
// computed once at generation time and frozen on the record.
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
	SeasonWinter Season = "winter"
)

// Seasons returns all seasons in calendar order starting at spring.
func Seasons() []Season {
	return []Season{SeasonSpring, SeasonSummer, SeasonAutumn, SeasonWinter}
}

// SeasonOn returns the season governing t's calendar date in t's location.
// Callers pass the period start, which is already in the reference timezone.
func SeasonOn(t time.Time) Season {
	switch t.Month() {
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	case time.September, time.October, time.November:
		return SeasonAutumn
	default:
		return SeasonWinter
	}
}
