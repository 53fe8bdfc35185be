package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/jsamuelsen/quote-manager/internal/domain"
	"github.com/jsamuelsen/quote-manager/internal/ports"
)

// User-facing notification texts.
const (
	MsgQuoteAdded     = "New quote added successfully!"
	MsgQuotesImported = "Quotes imported successfully!"
	MsgQuotesSynced   = "Quotes synced with server!"
)

// QuoteService orchestrates the quote manager's use cases.
// It depends on port interfaces, not concrete implementations.
type QuoteService struct {
	repo     *Repository
	sync     *SyncCoordinator
	session  ports.KeyValueStore
	notifier ports.Notifier
	executor *Executor
	bg       *Background
	logger   *slog.Logger
}

// QuoteServiceConfig contains the quote service's dependencies.
type QuoteServiceConfig struct {
	Repository *Repository
	Sync       *SyncCoordinator
	Session    ports.KeyValueStore
	Notifier   ports.Notifier
	Logger     *slog.Logger
}

// ImportResult is returned by ImportQuotes.
type ImportResult struct {
	Imported int `json:"imported"`
	Total    int `json:"total"`
}

// NewQuoteService creates a new quote service with the provided dependencies.
// It panics if Repository or Sync is nil.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Repository == nil {
		panic("app: QuoteService requires a Repository")
	}

	if cfg.Sync == nil {
		panic("app: QuoteService requires a SyncCoordinator")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("component", "quotes"))

	notifier := cfg.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}

	return &QuoteService{
		repo:     cfg.Repository,
		sync:     cfg.Sync,
		session:  cfg.Session,
		notifier: notifier,
		executor: NewExecutor(logger),
		bg:       NewBackground(logger),
		logger:   logger,
	}
}

// ShowRandom picks a random quote. An empty filter uses the selected category.
// The pick is remembered in the session store as the last viewed quote.
func (s *QuoteService) ShowRandom(ctx context.Context, filter string) (domain.Quote, error) {
	if filter == "" {
		filter = s.repo.SelectedCategory()
	}

	q, err := s.repo.PickRandom(filter)
	if err != nil {
		return domain.Quote{}, err
	}

	s.rememberLastViewed(ctx, q)

	return q, nil
}

// LastViewed returns the quote most recently shown in this session.
func (s *QuoteService) LastViewed(ctx context.Context) (domain.Quote, error) {
	if s.session == nil {
		return domain.Quote{}, domain.NewNotFoundError(KeyLastViewedQuote, "")
	}

	raw, err := s.session.Get(ctx, KeyLastViewedQuote)
	if err != nil {
		return domain.Quote{}, err
	}

	var q domain.Quote
	if err := json.Unmarshal(raw, &q); err != nil {
		return domain.Quote{}, fmt.Errorf("decoding %s: %w", KeyLastViewedQuote, err)
	}

	return q, nil
}

// AddQuote stores a new quote, then posts it and syncs in the background.
func (s *QuoteService) AddQuote(ctx context.Context, text, category string) (domain.Quote, error) {
	q, err := s.repo.Add(ctx, text, category)
	if err != nil {
		return domain.Quote{}, err
	}

	s.logger.InfoContext(ctx, "quote added", slog.String("category", q.Category))
	s.notifier.Notify(ctx, MsgQuoteAdded)

	s.bg.Go(ctx, "post-and-sync", func(ctx context.Context) error {
		postErr := s.sync.PostNewQuote(ctx, q)
		s.sync.SyncOnce(ctx)

		return postErr
	})

	return q, nil
}

// ImportQuotes appends every quote from an exported document.
// The document is fully validated before anything is appended.
func (s *QuoteService) ImportQuotes(ctx context.Context, src io.Reader) (ImportResult, error) {
	raw, err := io.ReadAll(src)
	if err != nil {
		return ImportResult{}, domain.NewImportParseError("reading document", err)
	}

	op := Operation[[]byte, []importItem, []domain.Quote, ImportResult]{
		Name: "import_quotes",
		Validate: func(_ context.Context, raw []byte) error {
			if len(bytes.TrimSpace(raw)) == 0 {
				return domain.NewImportParseError("document is empty", nil)
			}

			return nil
		},
		Perform: func(_ context.Context, raw []byte) ([]importItem, error) {
			return decodeImportDocument(raw)
		},
		Verify: func(_ context.Context, _ []byte, items []importItem) ([]domain.Quote, error) {
			return normalizeImportItems(items)
		},
		Archive: func(ctx context.Context, _ []byte, quotes []domain.Quote) error {
			s.repo.ImportAppend(ctx, quotes)
			return nil
		},
		Respond: func(_ context.Context, _ []byte, quotes []domain.Quote) (ImportResult, error) {
			return ImportResult{Imported: len(quotes), Total: s.repo.Len()}, nil
		},
	}

	result, err := Execute(ctx, s.executor, op, raw)
	if err != nil {
		return ImportResult{}, err
	}

	s.notifier.Notify(ctx, MsgQuotesImported)

	s.bg.Go(ctx, "sync-after-import", func(ctx context.Context) error {
		return s.sync.SyncOnce(ctx).Err
	})

	return result, nil
}

// ExportQuotes renders the list as an indented JSON document.
func (s *QuoteService) ExportQuotes() ([]byte, error) {
	return s.repo.Export()
}

// ListQuotes returns a snapshot of the stored quotes.
func (s *QuoteService) ListQuotes() []domain.Quote {
	return s.repo.Quotes()
}

// Categories returns the distinct categories and the selected filter.
func (s *QuoteService) Categories() (categories []string, selected string) {
	return s.repo.Categories(), s.repo.SelectedCategory()
}

// SelectCategory changes the persisted filter and returns the stored value.
func (s *QuoteService) SelectCategory(ctx context.Context, category string) string {
	return s.repo.SelectCategory(ctx, category)
}

// SyncNow runs one sync and waits for it.
func (s *QuoteService) SyncNow(ctx context.Context) SyncResult {
	return s.sync.SyncOnce(ctx)
}

// SyncState reports whether a sync is in flight.
func (s *QuoteService) SyncState() SyncState {
	return s.sync.State()
}

// Wait blocks until background posts and syncs started by the service finish.
func (s *QuoteService) Wait() {
	s.bg.Wait()
}

func (s *QuoteService) rememberLastViewed(ctx context.Context, q domain.Quote) {
	if s.session == nil {
		return
	}

	data, err := json.Marshal(q)
	if err != nil {
		return
	}

	if err := s.session.Set(ctx, KeyLastViewedQuote, data); err != nil {
		s.logger.WarnContext(ctx, "remembering last viewed quote failed", slog.Any("error", err))
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, string) {}
