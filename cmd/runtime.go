package cmd

import (
	"context"
	"fmt"

	"price-sync/core/config"
	"price-sync/core/database"
	"price-sync/core/events"
	"price-sync/core/logger"
	"price-sync/core/metrics"
	"price-sync/core/reconcile"
	"price-sync/core/storage"
	"price-sync/feature/archive"
	"price-sync/feature/catalog/store"
	"price-sync/feature/sources"
	"price-sync/feature/sync"

	"go.uber.org/zap"
)

// runtime holds everything a command needs to run jobs.
type runtime struct {
	cfg       *config.Config
	logger    *zap.Logger
	catalog   *store.Store
	sources   *sources.Registry
	metrics   *metrics.Registry
	publisher *events.Publisher
	archiver  *archive.Archiver
	service   *sync.Service
}

// bootstrap loads the configuration and wires the sync service. The catalog
// database is required; metrics, events and the archive are optional.
func bootstrap(ctx context.Context) (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(logg)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to catalog database: %w", err)
	}
	logg.Info("Connected to catalog database", zap.String("driver", cfg.Database.Driver))

	rt := &runtime{
		cfg:     cfg,
		logger:  logg,
		catalog: store.New(db, logg.Named("store")),
	}

	if rt.sources, err = sources.FromConfig(cfg, logg.Named("sources")); err != nil {
		return nil, err
	}

	var observers []reconcile.Observer
	opts := sync.Options{Log: cfg.Log}

	if cfg.Metrics.Enabled {
		rt.metrics = metrics.NewRegistry(cfg.Metrics.Namespace)
		observers = append(observers, rt.metrics)
		opts.Recorder = rt.metrics
	}
	if cfg.Events.Enabled {
		rt.publisher = events.NewPublisher(cfg.Events, logg.Named("events"))
		observers = append(observers, rt.publisher)
	}
	if cfg.Storage.Enabled {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			logg.Warn("Archive disabled", zap.Error(err))
		} else {
			rt.archiver = archive.New(client, cfg.Storage.Bucket, logg.Named("archive"))
			observers = append(observers, rt.archiver)
			opts.Reports = rt.archiver
		}
	}
	opts.Observers = observers

	rt.service = sync.NewService(cfg.Sync, rt.sources, rt.catalog, opts, logg)
	return rt, nil
}

// pruneArchive applies the retention once. Failures are only logged.
func (rt *runtime) pruneArchive(ctx context.Context) {
	retention := rt.cfg.Storage.Retention()
	if rt.archiver == nil || retention == 0 {
		return
	}
	if _, err := rt.archiver.Prune(ctx, retention); err != nil {
		rt.logger.Warn("Archive prune failed", zap.Error(err))
	}
}

func (rt *runtime) close() {
	if rt.publisher != nil {
		_ = rt.publisher.Close()
	}
	if rt.sources != nil {
		_ = rt.sources.Close()
	}
	_ = rt.logger.Sync()
}
