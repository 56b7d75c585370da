package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/Chuchoruto/ISS-Tracker/internal/adapter/http"
	kafkaadapter "github.com/Chuchoruto/ISS-Tracker/internal/adapter/kafka"
	"github.com/Chuchoruto/ISS-Tracker/internal/adapter/mapbox"
	"github.com/Chuchoruto/ISS-Tracker/internal/config"
	"github.com/Chuchoruto/ISS-Tracker/internal/domain"
	"github.com/Chuchoruto/ISS-Tracker/internal/feed"
	"github.com/Chuchoruto/ISS-Tracker/internal/observability"
	"github.com/Chuchoruto/ISS-Tracker/internal/refresher"
	"github.com/Chuchoruto/ISS-Tracker/internal/service"
	"github.com/Chuchoruto/ISS-Tracker/internal/store"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := newProvider(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to create feed provider", "error", err)
		os.Exit(1)
	}

	clock := clockwork.NewRealClock()
	loader := feed.NewLoader(provider, cfg.FeedTimeout, cfg.FeedMaxBytes, clock, logger)
	st := store.New(loader, clock, logger, metrics)

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, cfg.MapboxRateLimit, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	opts := service.Options{
		Geocoder:        geocoder,
		GeocodeTimeout:  cfg.MapboxTimeout,
		FreshnessWindow: cfg.FreshnessWindow,
	}
	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger, metrics)
		opts.Notifier = publisher
		logger.Info("kafka load events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	svc := service.New(st, domain.NewResolver(cfg.LongitudeOffsetDeg), opts, logger, metrics)

	// A failed initial load leaves the service up but not ready; POST
	// /post-data or the refresher can fill it later.
	if summary, err := svc.Reload(ctx); err != nil {
		logger.Error("initial telemetry load failed", "error", err, "source", fmt.Sprint(provider))
	} else {
		logger.Info("initial telemetry load complete",
			"count", summary.Count,
			"first_epoch", summary.FirstEpoch,
			"last_epoch", summary.LastEpoch,
		)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, st, logger)
	ref := refresher.New(svc, cfg.RefreshInterval, clock, logger, metrics)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return ref.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("service stopped with error", "error", err)
	}

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

func newProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) (feed.Provider, error) {
	switch cfg.FeedSource {
	case "s3":
		client, err := feed.NewAnonymousS3Client(ctx, cfg.FeedS3Region)
		if err != nil {
			return nil, err
		}
		logger.Info("telemetry feed from s3", "bucket", cfg.FeedS3Bucket, "key", cfg.FeedS3Key)
		return feed.NewS3Provider(client, cfg.FeedS3Bucket, cfg.FeedS3Key, cfg.FeedMaxBytes), nil
	default:
		logger.Info("telemetry feed over http", "url", cfg.FeedURL)
		return feed.NewHTTPProvider(cfg.FeedURL, cfg.FeedTimeout, cfg.FeedMaxBytes, logger), nil
	}
}
