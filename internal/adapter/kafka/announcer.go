// Package kafka publishes weather announcements for the chat-posting
// collaborator. The engine itself never depends on Kafka; the warm trigger
// feeds this producer when a reading first becomes visible.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rootsofthewild/village-weather/internal/config"
	"github.com/rootsofthewild/village-weather/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Announcer produces weather announcements to the configured topic.
type Announcer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewAnnouncer creates a Kafka producer for the announcement topic.
func NewAnnouncer(cfg *config.Config, logger *slog.Logger) *Announcer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Announcer{writer: w, logger: logger}
}

// Announce serializes and publishes one weather reading.
func (a *Announcer) Announce(ctx context.Context, r domain.WeatherReading) error {
	msg, err := serializeToMessage(r)
	if err != nil {
		return err
	}
	if err := a.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("announce weather for %s: %w", r.Village, err)
	}
	return nil
}

func (a *Announcer) Close() error {
	return a.writer.Close()
}

// serializeToMessage marshals a reading into a Kafka message keyed on
// village and period start, so replays for the same period coalesce.
func serializeToMessage(r domain.WeatherReading) (kafkago.Message, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize weather reading: %w", err)
	}
	key := fmt.Sprintf("%s|%s", r.Village, r.PeriodStart.UTC().Format(time.RFC3339))
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "village", Value: []byte(r.Village)},
			{Key: "season", Value: []byte(r.Season)},
			{Key: "period_start", Value: []byte(r.PeriodStart.UTC().Format(time.RFC3339))},
		},
	}, nil
}
