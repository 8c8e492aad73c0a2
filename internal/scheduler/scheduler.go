// Package scheduler runs the optional warm trigger: once per interval it
// ensures each village's current reading exists, announces readings the
// first time they become visible, and marks them posted. Period transitions
// themselves are computed lazily from wall-clock time on every query; this
// trigger only warms the store and drives announcements, it is not a
// correctness requirement.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rootsofthewild/village-weather/internal/domain"
	"github.com/rootsofthewild/village-weather/internal/observability"
	"github.com/rootsofthewild/village-weather/internal/store"
)

// WeatherSource is the engine surface the warm trigger needs.
type WeatherSource interface {
	Villages() []domain.Village
	PostedWeather(ctx context.Context, v domain.Village) (domain.WeatherReading, error)
	CurrentWeather(ctx context.Context, v domain.Village) (domain.WeatherReading, error)
}

// Announcer publishes a reading to the chat-posting collaborator.
// A nil Announcer disables announcements but still warms the store.
type Announcer interface {
	Announce(ctx context.Context, r domain.WeatherReading) error
}

// Warmer periodically warms the weather store for every village.
type Warmer struct {
	scheduler *gocron.Scheduler
	source    WeatherSource
	announcer Announcer
	logger    *slog.Logger
	metrics   *observability.Metrics
	interval  time.Duration
	timeout   time.Duration
}

// New creates a Warmer. announcer may be nil.
func New(source WeatherSource, announcer Announcer, interval time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Warmer {
	return &Warmer{
		scheduler: gocron.NewScheduler(time.UTC),
		source:    source,
		announcer: announcer,
		logger:    logger,
		metrics:   metrics,
		interval:  interval,
		timeout:   time.Minute,
	}
}

// Start schedules the periodic job and starts the underlying scheduler
// without blocking.
func (w *Warmer) Start() error {
	if _, err := w.scheduler.Every(w.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		defer cancel()
		w.RunOnce(ctx)
	}); err != nil {
		return err
	}
	w.scheduler.StartAsync()
	w.logger.Info("warm trigger started", "interval", w.interval)
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (w *Warmer) Stop() {
	w.scheduler.Stop()
}

// RunOnce warms every village once. A village whose reading is already
// posted is left alone; otherwise the current reading is generated (or an
// activated pre-scheduled one picked up and marked posted) and announced.
func (w *Warmer) RunOnce(ctx context.Context) {
	for _, v := range w.source.Villages() {
		if err := w.warmVillage(ctx, v); err != nil {
			w.metrics.WarmRunErrors.Inc()
			w.logger.Error("warm run failed", "village", v, "error", err)
		}
	}
}

func (w *Warmer) warmVillage(ctx context.Context, v domain.Village) error {
	_, err := w.source.PostedWeather(ctx, v)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	reading, err := w.source.CurrentWeather(ctx, v)
	if err != nil {
		return err
	}

	if w.announcer != nil {
		if err := w.announcer.Announce(ctx, reading); err != nil {
			return err
		}
		w.metrics.ReadingsAnnounced.WithLabelValues(string(v)).Inc()
		w.logger.Info("weather announced", "village", v, "period_start", reading.PeriodStart)
	}
	return nil
}
