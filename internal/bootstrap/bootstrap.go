// Package bootstrap assembles the quote manager from configuration.
// Both the HTTP service and the CLI build their object graph here.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/quote-manager/internal/adapters/clients"
	"github.com/jsamuelsen/quote-manager/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quote-manager/internal/adapters/http"
	"github.com/jsamuelsen/quote-manager/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-manager/internal/adapters/notify"
	"github.com/jsamuelsen/quote-manager/internal/adapters/storage/memory"
	"github.com/jsamuelsen/quote-manager/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen/quote-manager/internal/app"
	"github.com/jsamuelsen/quote-manager/internal/domain"
	"github.com/jsamuelsen/quote-manager/internal/platform/config"
	"github.com/jsamuelsen/quote-manager/internal/platform/metrics"
	"github.com/jsamuelsen/quote-manager/internal/ports"
)

// Options overrides parts of the graph. The zero value builds everything
// from configuration.
type Options struct {
	// Store replaces the SQLite store. The caller owns its lifetime.
	Store ports.KeyValueStore

	// Source replaces the HTTP quote server adapter.
	Source ports.RemoteSource

	// Registry receives the business metrics and backs /-/metrics.
	// Defaults to the prometheus default registry.
	Registry *prometheus.Registry

	BuildInfo handlers.BuildInfo
}

// App is the assembled quote manager.
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	Repository *app.Repository
	Sync       *app.SyncCoordinator
	Service    *app.QuoteService
	Feed       *notify.Feed
	Health     *ports.DefaultHealthRegistry
	Metrics    *metrics.Collector

	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
	buildInfo  handlers.BuildInfo
	closers    []func() error
}

// New opens storage, restores the persisted state and wires every component.
// An unusable store is returned as an error; the process should not start.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{
		Config:     cfg,
		Logger:     logger,
		Health:     ports.NewHealthRegistry(),
		registerer: prometheus.DefaultRegisterer,
		gatherer:   prometheus.DefaultGatherer,
		buildInfo:  opts.BuildInfo,
	}

	if opts.Registry != nil {
		a.registerer, a.gatherer = opts.Registry, opts.Registry
	}

	if err := a.build(ctx, opts); err != nil {
		_ = a.Close()
		return nil, err
	}

	return a, nil
}

func (a *App) build(ctx context.Context, opts Options) error {
	store, err := a.openStore(ctx, opts.Store)
	if err != nil {
		return err
	}

	source, err := a.remoteSource(opts.Source)
	if err != nil {
		return err
	}

	collector, err := metrics.NewCollector(a.registerer)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	a.Metrics = collector

	persister := app.NewPersister(store, a.Logger)

	snapshot, err := persister.Load(ctx)
	if err != nil {
		return err
	}

	a.Repository = app.NewRepository(snapshot.Quotes, app.WithSelectedCategory(snapshot.Category))
	persister.Attach(a.Repository)
	a.Repository.OnChange(func(_ context.Context, quotes []domain.Quote) {
		collector.QuotesStored(len(quotes))
	})
	collector.QuotesStored(a.Repository.Len())

	a.Feed = notify.New(notify.Config{
		TTL:      a.Config.Notifications.TTL,
		Capacity: a.Config.Notifications.Capacity,
	}, a.Logger)

	a.Sync = app.NewSyncCoordinator(app.SyncCoordinatorConfig{
		Repository: a.Repository,
		Source:     source,
		SourceName: a.Config.Services.Quote.Name,
		Metrics:    collector,
		Logger:     a.Logger,
	})
	a.Sync.OnSynced(func(ctx context.Context, _ app.SyncResult) {
		a.Feed.Notify(ctx, app.MsgQuotesSynced)
	})

	a.Service = app.NewQuoteService(app.QuoteServiceConfig{
		Repository: a.Repository,
		Sync:       a.Sync,
		Session:    memory.New(),
		Notifier:   a.Feed,
		Logger:     a.Logger,
	})

	return nil
}

func (a *App) openStore(ctx context.Context, override ports.KeyValueStore) (ports.KeyValueStore, error) {
	if override != nil {
		if checker, ok := override.(ports.HealthChecker); ok {
			if err := a.Health.Register(checker); err != nil {
				return nil, fmt.Errorf("registering storage health check: %w", err)
			}
		}

		return override, nil
	}

	store, err := sqlite.Open(ctx, sqlite.Config{
		Path:        a.Config.Storage.Path,
		BusyTimeout: a.Config.Storage.BusyTimeout,
	})
	if err != nil {
		return nil, err
	}

	a.closers = append(a.closers, store.Close)

	if err := a.Health.Register(store); err != nil {
		return nil, fmt.Errorf("registering storage health check: %w", err)
	}

	return store, nil
}

func (a *App) remoteSource(override ports.RemoteSource) (ports.RemoteSource, error) {
	source := override

	if source == nil {
		clientCfg := clients.FromConfig(a.Config.Client, a.Config.Services.Quote)
		clientCfg.Logger = a.Logger

		client, err := clients.New(clientCfg)
		if err != nil {
			return nil, fmt.Errorf("creating quote server client: %w", err)
		}

		source = acl.NewPostsSource(acl.PostsSourceConfig{
			Client:    client,
			PostsPath: a.Config.Services.Quote.PostsPath,
			Logger:    a.Logger,
		})
	}

	if checker, ok := source.(ports.HealthChecker); ok {
		if err := a.Health.Register(checker); err != nil {
			return nil, fmt.Errorf("registering quote server health check: %w", err)
		}
	}

	return source, nil
}

// Server builds the HTTP server with every route mounted.
func (a *App) Server() *http.Server {
	server := http.New(&a.Config.Server, a.Logger)

	http.SetupRouter(server.Engine(), http.NewDefaultRouterConfig(
		a.Logger,
		a.Config.App.Name,
		handlers.NewHealthHandler(a.Health, a.buildInfo, a.gatherer),
		handlers.NewQuoteHandler(a.Service, a.Feed),
	))

	return server
}

// StartSync starts the periodic sync when it is enabled. The returned channel
// closes once the scheduler has stopped; it is already closed when sync is
// disabled.
func (a *App) StartSync(ctx context.Context) <-chan struct{} {
	if !a.Config.Sync.Enabled {
		done := make(chan struct{})
		close(done)

		return done
	}

	return a.Sync.SchedulePeriodicSync(ctx, a.Config.Sync.Interval)
}

// Close waits for background work and releases the store.
func (a *App) Close() error {
	if a.Service != nil {
		a.Service.Wait()
	}

	var errs []error
	for _, closeFn := range a.closers {
		errs = append(errs, closeFn())
	}

	a.closers = nil

	return errors.Join(errs...)
}
