package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	httpadapter "github.com/couchcryptid/epw-viewer/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/epw-viewer/internal/adapter/kafka"
	"github.com/couchcryptid/epw-viewer/internal/adapter/mapbox"
	"github.com/couchcryptid/epw-viewer/internal/config"
	"github.com/couchcryptid/epw-viewer/internal/observability"
	"github.com/couchcryptid/epw-viewer/internal/pipeline"
	"github.com/couchcryptid/epw-viewer/internal/station"
	"github.com/couchcryptid/epw-viewer/internal/store"
)

// sweepInterval is how often expired files are dropped from the store.
const sweepInterval = time.Minute

// geocodeCacheSize bounds the number of distinct station coordinates whose
// place names are kept.
const geocodeCacheSize = 1000

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the viewer API. Uploaded files are decoded once and kept in memory,
keyed by content hash, for CACHE_TTL. Configuration is read from the
environment and from a .env file in the working directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Geocoding is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	var geocoder station.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, geocodeCacheSize, nil, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	files := store.New(store.Options{
		Size:      cfg.CacheSize,
		TTL:       cfg.CacheTTL,
		AllowGaps: cfg.AllowGaps,
		Geocoder:  geocoder,
	}, metrics, logger)

	api := httpadapter.API{
		Files:          files,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Metrics:        metrics,
	}
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		api.Publisher = pipeline.NewPublisher(writer, nil, logger, metrics, cfg.BatchSize)
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, api, files, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the file store sweeper.
	go func() {
		if err := files.Run(ctx, sweepInterval); err != nil {
			logger.Error("file store sweeper error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdown(cfg, srv, writer, logger)
	logger.Info("shutdown complete")
	return nil
}

func shutdown(cfg *config.Config, srv *httpadapter.Server, writer *kafkaadapter.Writer, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
}
