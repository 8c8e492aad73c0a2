package domain

import "time"

// GuaranteedProbability is the sentinel stored in place of a percentage when
// a special condition was injected by the scheduler rather than rolled.
const GuaranteedProbability = "guaranteed"

// Attribute is one chosen weather value plus the probability mass it held at
// selection time. Probability is recorded for audit and debugging, not
// gameplay, and is never re-derived from the catalog on read.
type Attribute struct {
	Label       string  `json:"label"`
	Symbol      string  `json:"symbol"`
	Value       float64 `json:"value"`
	Probability float64 `json:"probability_percent"`
}

// Special is an optional special weather condition. Probability is either a
// percentage string (e.g. "12.5%") or the [GuaranteedProbability] sentinel.
type Special struct {
	Label       string `json:"label"`
	Symbol      string `json:"symbol"`
	Probability string `json:"probability"`
}

// Guaranteed reports whether the special was scheduler-injected.
func (s *Special) Guaranteed() bool {
	return s != nil && s.Probability == GuaranteedProbability
}

// WeatherReading is one simulated weather state for one village for one
// period. At most one reading exists per (Village, PeriodStart) pair;
// the store enforces that with a uniqueness constraint.
type WeatherReading struct {
	Village       Village    `json:"village"`
	PeriodStart   time.Time  `json:"period_start"`
	Season        Season     `json:"season"`
	Temperature   Attribute  `json:"temperature"`
	Wind          Attribute  `json:"wind"`
	Precipitation Attribute  `json:"precipitation"`
	Special       *Special   `json:"special,omitempty"`
	Posted        bool       `json:"posted"`
	CreatedAt     time.Time  `json:"created_at"`
}
