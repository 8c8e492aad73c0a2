// Command weatherd runs the village weather engine: lazy per-period weather
// generation backed by SQLite, health/readiness/metrics endpoints, an
// optional warm trigger, and optional Kafka announcements.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpadapter "github.com/rootsofthewild/village-weather/internal/adapter/http"
	kafkaadapter "github.com/rootsofthewild/village-weather/internal/adapter/kafka"
	"github.com/rootsofthewild/village-weather/internal/config"
	"github.com/rootsofthewild/village-weather/internal/domain"
	"github.com/rootsofthewild/village-weather/internal/engine"
	"github.com/rootsofthewild/village-weather/internal/observability"
	"github.com/rootsofthewild/village-weather/internal/scheduler"
	"github.com/rootsofthewild/village-weather/internal/store/sqlite"
)

func main() {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("failed to load timezone", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	st, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}

	eng, err := engine.New(st, domain.DefaultCatalog(), engine.Options{
		Timezone:      loc,
		CutoverHour:   cfg.CutoverHour,
		SpecialChance: cfg.SpecialChance,
		StoreTimeout:  cfg.StoreTimeout,
		Logger:        logger,
		Metrics:       metrics,
	})
	if err != nil {
		logger.Error("failed to build engine", "error", err)
		os.Exit(1)
	}

	var announcer *kafkaadapter.Announcer
	if cfg.KafkaEnabled {
		announcer = kafkaadapter.NewAnnouncer(cfg, logger)
		logger.Info("kafka announcements enabled", "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka announcements disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, eng, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	var warmer *scheduler.Warmer
	if cfg.WarmEnabled {
		// The interface indirection keeps the scheduler package free of a
		// concrete kafka dependency when announcements are disabled.
		var ann scheduler.Announcer
		if announcer != nil {
			ann = announcer
		}
		warmer = scheduler.New(eng, ann, cfg.WarmInterval, logger, metrics)
		if err := warmer.Start(); err != nil {
			logger.Error("failed to start warm trigger", "error", err)
			os.Exit(1)
		}
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if warmer != nil {
		warmer.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if announcer != nil {
		if err := announcer.Close(); err != nil {
			logger.Error("kafka announcer close error", "error", err)
		}
	}
	if err := st.Close(); err != nil {
		logger.Error("store close error", "error", err)
	}

	logger.Info("shutdown complete")
}
