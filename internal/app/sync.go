package app

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jsamuelsen/quote-manager/internal/domain"
	"github.com/jsamuelsen/quote-manager/internal/platform/logging"
	"github.com/jsamuelsen/quote-manager/internal/ports"
)

// DefaultSyncInterval is the polling period used when none is configured.
const DefaultSyncInterval = 60 * time.Second

// SyncState reports whether any sync run is in flight.
type SyncState string

const (
	SyncIdle    SyncState = "idle"
	SyncSyncing SyncState = "syncing"
)

// SyncResult describes one finished sync run.
// Err is nil on success and a domain.FetchError otherwise.
type SyncResult struct {
	Fetched  int
	Total    int
	Duration time.Duration
	Err      error
}

// OK reports whether the run merged server data.
func (r SyncResult) OK() bool { return r.Err == nil }

// SyncObserver is notified after every sync run, successful or not.
type SyncObserver func(ctx context.Context, result SyncResult)

// SyncCoordinator merges the remote quote list into the repository.
type SyncCoordinator struct {
	repo       *Repository
	source     ports.RemoteSource
	sourceName string
	metrics    ports.QuoteMetrics
	logger     *slog.Logger

	inFlight atomic.Int32

	mu        sync.RWMutex
	observers []SyncObserver
}

// SyncCoordinatorConfig contains the coordinator's dependencies.
type SyncCoordinatorConfig struct {
	Repository *Repository
	Source     ports.RemoteSource
	SourceName string
	Metrics    ports.QuoteMetrics
	Logger     *slog.Logger
}

// NewSyncCoordinator creates a coordinator. It panics if Repository or Source is nil.
func NewSyncCoordinator(cfg SyncCoordinatorConfig) *SyncCoordinator {
	if cfg.Repository == nil {
		panic("app: SyncCoordinator requires a Repository")
	}

	if cfg.Source == nil {
		panic("app: SyncCoordinator requires a RemoteSource")
	}

	if cfg.SourceName == "" {
		cfg.SourceName = "quote-server"
	}

	if cfg.Metrics == nil {
		cfg.Metrics = ports.NopMetrics{}
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &SyncCoordinator{
		repo:       cfg.Repository,
		source:     cfg.Source,
		sourceName: cfg.SourceName,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger.With(slog.String("component", "sync")),
	}
}

// OnSynced registers an observer for finished runs.
func (c *SyncCoordinator) OnSynced(fn SyncObserver) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.observers = append(c.observers, fn)
}

// State returns SyncSyncing while at least one run is in flight.
func (c *SyncCoordinator) State() SyncState {
	if c.inFlight.Load() > 0 {
		return SyncSyncing
	}

	return SyncIdle
}

// SyncOnce fetches the server list and merges it with server precedence.
// A failed fetch leaves the repository untouched and is reported in the
// result; it never panics or propagates.
func (c *SyncCoordinator) SyncOnce(ctx context.Context) SyncResult {
	c.inFlight.Add(1)
	defer c.inFlight.Add(-1)

	logger := c.loggerFrom(ctx)
	start := time.Now()

	logger.DebugContext(ctx, "sync started")

	remote, err := c.source.FetchQuotes(ctx)
	if err != nil {
		if !domain.IsFetch(err) {
			err = domain.NewFetchError(c.sourceName, err)
		}

		result := SyncResult{Duration: time.Since(start), Err: err, Total: c.repo.Len()}

		logger.WarnContext(ctx, "sync failed", slog.Any("error", err))
		c.metrics.SyncCompleted(ports.OutcomeFailure, result.Duration)
		c.emit(ctx, result)

		return result
	}

	server := make([]domain.Quote, 0, len(remote))
	for _, q := range remote {
		if strings.TrimSpace(q.Text) == "" {
			continue
		}

		server = append(server, domain.ServerQuote(q.Text))
	}

	merged := c.repo.Reconcile(ctx, func(local []domain.Quote) []domain.Quote {
		return domain.Merge(server, local)
	})

	result := SyncResult{
		Fetched:  len(server),
		Total:    len(merged),
		Duration: time.Since(start),
	}

	logger.InfoContext(ctx, "sync completed",
		slog.Int("fetched", result.Fetched),
		slog.Int("total", result.Total),
		slog.Duration("duration", result.Duration),
	)
	c.metrics.SyncCompleted(ports.OutcomeSuccess, result.Duration)
	c.emit(ctx, result)

	return result
}

// PostNewQuote submits a quote to the server once. Failures are logged and
// returned as a domain.SubmitError; the coordinator never retries them.
func (c *SyncCoordinator) PostNewQuote(ctx context.Context, q domain.Quote) error {
	logger := c.loggerFrom(ctx)

	err := c.source.SubmitQuote(ctx, q)
	if err != nil {
		err = domain.NewSubmitError(c.sourceName, q, err)

		logger.WarnContext(ctx, "posting quote failed",
			slog.String("category", q.Category),
			slog.Any("error", err),
		)
		c.metrics.SubmissionCompleted(ports.OutcomeFailure)

		return err
	}

	logger.DebugContext(ctx, "quote posted", slog.String("category", q.Category))
	c.metrics.SubmissionCompleted(ports.OutcomeSuccess)

	return nil
}

// SchedulePeriodicSync runs SyncOnce immediately and then every interval
// until ctx is cancelled. Runs are independent and may overlap.
// The returned channel is closed once the ticker loop and every run it
// started have returned.
func (c *SyncCoordinator) SchedulePeriodicSync(ctx context.Context, interval time.Duration) <-chan struct{} {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}

	done := make(chan struct{})

	go func() {
		var runs sync.WaitGroup

		defer func() {
			runs.Wait()
			close(done)
		}()

		start := func() {
			runs.Go(func() { c.SyncOnce(ctx) })
		}

		c.logger.InfoContext(ctx, "periodic sync scheduled", slog.Duration("interval", interval))

		start()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				c.logger.InfoContext(ctx, "periodic sync stopped")
				return
			case <-ticker.C:
				start()
			}
		}
	}()

	return done
}

func (c *SyncCoordinator) emit(ctx context.Context, result SyncResult) {
	c.mu.RLock()
	observers := make([]SyncObserver, len(c.observers))
	copy(observers, c.observers)
	c.mu.RUnlock()

	for _, fn := range observers {
		fn(ctx, result)
	}
}

func (c *SyncCoordinator) loggerFrom(ctx context.Context) *slog.Logger {
	if logger, ok := logging.Lookup(ctx); ok {
		return logger.With(slog.String("component", "sync"))
	}

	return c.logger
}
