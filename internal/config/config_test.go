package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "village-weather.db", cfg.DBPath)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, "America/New_York", cfg.Timezone)
	assert.Equal(t, 8, cfg.CutoverHour)
	assert.InDelta(t, 0.3, cfg.SpecialChance, 0.0001)
	assert.True(t, cfg.WarmEnabled)
	assert.Equal(t, 10*time.Minute, cfg.WarmInterval)
	assert.False(t, cfg.KafkaEnabled)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "village-weather-announcements", cfg.KafkaTopic)
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("DB_PATH", "/data/weather.db")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("WEATHER_TIMEZONE", "UTC")
	t.Setenv("CUTOVER_HOUR", "6")
	t.Setenv("SPECIAL_CHANCE", "0.5")
	t.Setenv("WARM_INTERVAL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/weather.db", cfg.DBPath)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 6, cfg.CutoverHour)
	assert.InDelta(t, 0.5, cfg.SpecialChance, 0.0001)
	assert.Equal(t, 5*time.Minute, cfg.WarmInterval)
}

func TestLoad_KafkaBrokersImplyEnabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker-1:9092,broker-2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
}

func TestLoad_KafkaEnabledRequiresBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"cutover hour zero", "CUTOVER_HOUR", "0", "CUTOVER_HOUR"},
		{"cutover hour too large", "CUTOVER_HOUR", "24", "CUTOVER_HOUR"},
		{"special chance negative", "SPECIAL_CHANCE", "-0.1", "SPECIAL_CHANCE"},
		{"special chance above one", "SPECIAL_CHANCE", "1.5", "SPECIAL_CHANCE"},
		{"shutdown timeout zero", "SHUTDOWN_TIMEOUT", "0s", "SHUTDOWN_TIMEOUT"},
		{"store timeout negative", "STORE_TIMEOUT", "-1s", "STORE_TIMEOUT"},
		{"warm interval zero", "WARM_INTERVAL", "0s", "WARM_INTERVAL"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
