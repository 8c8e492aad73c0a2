package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rootsofthewild/village-weather/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	periodStart := time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)
	r := domain.WeatherReading{
		Village:       domain.VillageRudania,
		PeriodStart:   periodStart,
		Season:        domain.SeasonSummer,
		Temperature:   domain.Attribute{Label: "90°F", Symbol: "🔥", Value: 90, Probability: 33.3},
		Wind:          domain.Attribute{Label: "Calm", Symbol: "🍃", Value: 2, Probability: 30},
		Precipitation: domain.Attribute{Label: "Clear", Symbol: "🌞", Probability: 25},
		Special:       &domain.Special{Label: "Drought", Symbol: "🌵", Probability: "6.0%"},
		Posted:        true,
	}

	msg, err := serializeToMessage(r)
	require.NoError(t, err)

	assert.Equal(t, "rudania|2026-06-10T12:00:00Z", string(msg.Key),
		"replays for the same village and period must coalesce on one key")

	var decoded domain.WeatherReading
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, r.Village, decoded.Village)
	assert.True(t, decoded.PeriodStart.Equal(periodStart))
	assert.Equal(t, r.Temperature, decoded.Temperature)
	require.NotNil(t, decoded.Special)
	assert.Equal(t, "Drought", decoded.Special.Label)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "rudania", headers["village"])
	assert.Equal(t, "summer", headers["season"])
	assert.Equal(t, "2026-06-10T12:00:00Z", headers["period_start"])
}

func TestSerializeToMessage_OmitsAbsentSpecial(t *testing.T) {
	r := domain.WeatherReading{
		Village:     domain.VillageVhintl,
		PeriodStart: time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC),
		Season:      domain.SeasonSummer,
	}

	msg, err := serializeToMessage(r)
	require.NoError(t, err)
	assert.NotContains(t, string(msg.Value), `"special"`)
}
