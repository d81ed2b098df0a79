package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/compliance-dashboard/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/compliance-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/compliance-dashboard/internal/adapter/mapbox"
	"github.com/couchcryptid/compliance-dashboard/internal/adapter/upstream"
	"github.com/couchcryptid/compliance-dashboard/internal/config"
	"github.com/couchcryptid/compliance-dashboard/internal/domain"
	"github.com/couchcryptid/compliance-dashboard/internal/observability"
	"github.com/couchcryptid/compliance-dashboard/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxCountry, cfg.MapboxTimeout, metrics, logger)
		cached, err := mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		if err != nil {
			logger.Error("failed to create geocoder", "error", err)
			os.Exit(1)
		}
		geocoder = cached
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout, "country", cfg.MapboxCountry)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	seed := uint64(clockwork.NewRealClock().Now().UnixNano())
	if cfg.SynthesisSeed != nil {
		seed = *cfg.SynthesisSeed
	}
	logger.Info("placeholder synthesis seeded", "seed", seed, "fixed", cfg.SynthesisSeed != nil)

	source := upstream.NewClient(cfg.ProjectsBaseURL, cfg.ProjectsTimeout, logger)
	loader := pipeline.NewLoader(source, geocoder, domain.NewSynthesizer(seed), logger, metrics)

	var sinks []pipeline.Sink
	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger)
		sinks = append(sinks, publisher)
		logger.Info("kafka snapshot sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSnapshotTopic)
	}

	session := pipeline.NewSession(loader, logger, metrics, sinks...)
	srv := httpadapter.NewServer(cfg.HTTPAddr, session, cfg.ReloadTimeout, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Initial load. Readiness flips once it commits.
	go func() {
		loadCtx, cancel := context.WithTimeout(ctx, cfg.ReloadTimeout)
		defer cancel()
		session.Load(loadCtx)
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
