package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rootsofthewild/village-weather/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DBPath          string        `env:"DB_PATH" envDefault:"village-weather.db"`
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	StoreTimeout    time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`

	// Period boundary policy.
	Timezone    string `env:"WEATHER_TIMEZONE" envDefault:"America/New_York"`
	CutoverHour int    `env:"CUTOVER_HOUR" envDefault:"8"`

	// Generation tuning.
	SpecialChance float64 `env:"SPECIAL_CHANCE" envDefault:"0.3"`

	// Warm trigger: periodically ensure each village's current reading
	// exists and announce it. Optional; correctness never depends on it.
	WarmEnabled  bool          `env:"WARM_ENABLED" envDefault:"true"`
	WarmInterval time.Duration `env:"WARM_INTERVAL" envDefault:"10m"`

	// Announcement topic for the chat-posting collaborator. Kafka is
	// enabled implicitly by configuring brokers.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"village-weather-announcements"`
	KafkaEnabled bool     `env:"KAFKA_ENABLED"`
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if !cfg.KafkaEnabled && len(cfg.KafkaBrokers) > 0 {
		cfg.KafkaEnabled = true
	}

	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("invalid SHUTDOWN_TIMEOUT")
	}
	if cfg.StoreTimeout <= 0 {
		return nil, errors.New("invalid STORE_TIMEOUT")
	}
	if cfg.CutoverHour < 1 || cfg.CutoverHour > 23 {
		return nil, errors.New("CUTOVER_HOUR must be between 1 and 23")
	}
	if cfg.SpecialChance < 0 || cfg.SpecialChance > 1 {
		return nil, errors.New("SPECIAL_CHANCE must be between 0 and 1")
	}
	if cfg.WarmEnabled && cfg.WarmInterval <= 0 {
		return nil, errors.New("invalid WARM_INTERVAL")
	}
	if cfg.Timezone == "" {
		cfg.Timezone = domain.DefaultTimezone
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}

	return cfg, nil
}
