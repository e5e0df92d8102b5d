// Package app initializes and holds long-lived application services, acting
// as a dependency injection container for the CLI commands.
package app

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/tlevesque/meteodb/internal/archive"
	"github.com/tlevesque/meteodb/internal/config"
	"github.com/tlevesque/meteodb/internal/logging"
	"github.com/tlevesque/meteodb/internal/meteociel"
	"github.com/tlevesque/meteodb/internal/metrics"
	"github.com/tlevesque/meteodb/internal/notify"
	"github.com/tlevesque/meteodb/internal/store"
	"github.com/tlevesque/meteodb/internal/store/postgres"
)

// App holds all the shared, long-lived services for one invocation: logger,
// store, remote-source client, and the run-report sink. Initialized once at
// startup and handed to the command that runs.
type App struct {
	Config config.Config
	Logger *zap.Logger
	Store  store.Store
	Client *meteociel.Client
	Notify notify.Sink

	metricsServer *http.Server
}

// New builds the App from configuration, failing fast if any critical
// service cannot be initialized.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metrics.Init()

	st, err := postgres.New(ctx, postgres.Config{
		DSN:      cfg.DB.DSN,
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	})
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	archiveProvider, err := buildArchive(ctx, cfg, logger)
	if err != nil {
		st.Close()
		return nil, err
	}

	client := meteociel.New(meteociel.Config{
		BaseURL:   cfg.HTTP.BaseURL,
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.HTTPTimeout(),
	}, archiveProvider, logger)

	sink, err := buildNotify(ctx, cfg, logger)
	if err != nil {
		st.Close()
		return nil, err
	}

	a := &App{
		Config: cfg,
		Logger: logger,
		Store:  st,
		Client: client,
		Notify: sink,
	}

	if cfg.Metrics.Enabled {
		a.metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: metrics.Handler(),
		}
		go func() {
			logger.Info("serving metrics", zap.Int("port", cfg.Metrics.Port))
			if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	return a, nil
}

func buildArchive(ctx context.Context, cfg config.Config, logger *zap.Logger) (archive.Provider, error) {
	switch cfg.Archive.Provider {
	case "gcs":
		logger.Info("archiving raw pages to GCS", zap.String("bucket", cfg.Archive.GCSBucket))
		p, err := archive.NewGCSProvider(ctx, cfg.Archive.GCSBucket)
		if err != nil {
			return nil, fmt.Errorf("init gcs archive: %w", err)
		}
		return p, nil
	case "local":
		logger.Info("archiving raw pages locally", zap.String("dir", cfg.Archive.LocalDir))
		p, err := archive.NewLocalProvider(cfg.Archive.LocalDir)
		if err != nil {
			return nil, fmt.Errorf("init local archive: %w", err)
		}
		return p, nil
	default:
		return &archive.NoOpProvider{}, nil
	}
}

func buildNotify(ctx context.Context, cfg config.Config, logger *zap.Logger) (notify.Sink, error) {
	switch cfg.Notify.Provider {
	case "pubsub":
		logger.Info("publishing run reports to Pub/Sub", zap.String("topic", cfg.Notify.TopicID))
		s, err := notify.NewPubSubSink(ctx, cfg.Notify.ProjectID, cfg.Notify.TopicID)
		if err != nil {
			return nil, fmt.Errorf("init pubsub sink: %w", err)
		}
		return s, nil
	case "noop":
		return notify.NoOpSink{}, nil
	default:
		return notify.NewLogSink(logger), nil
	}
}

// Close gracefully shuts down all services in the container.
func (a *App) Close() {
	if a.metricsServer != nil {
		_ = a.metricsServer.Close()
	}
	if err := a.Notify.Close(); err != nil {
		a.Logger.Warn("error closing notify sink", zap.Error(err))
	}
	a.Store.Close()
	// Flush buffered log entries; best effort on shutdown.
	_ = a.Logger.Sync()
}
