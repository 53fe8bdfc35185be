package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/quote-manager/internal/domain"
	"github.com/jsamuelsen/quote-manager/internal/ports"
)

// Storage keys.
const (
	KeyQuotes           = "quotes"
	KeySelectedCategory = "selectedCategory"
	KeyLastViewedQuote  = "lastViewedQuote"
)

// Snapshot is the persisted repository state.
type Snapshot struct {
	Quotes   []domain.Quote
	Category string
}

// Persister mirrors the repository into a KeyValueStore.
type Persister struct {
	store  ports.KeyValueStore
	logger *slog.Logger
}

// NewPersister creates a persister. It panics if store is nil.
func NewPersister(store ports.KeyValueStore, logger *slog.Logger) *Persister {
	if store == nil {
		panic("app: Persister requires a KeyValueStore")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Persister{
		store:  store,
		logger: logger.With(slog.String("component", "persister")),
	}
}

// Load reads the stored quotes and filter concurrently.
// A missing, unparseable, or null quote list yields the seed quotes;
// a missing filter yields domain.CategoryAll. Storage failures are returned.
func (p *Persister) Load(ctx context.Context) (Snapshot, error) {
	quotes, category, err := Parallel2(ctx, p.loadQuotes, p.loadCategory)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading persisted state: %w", err)
	}

	return Snapshot{Quotes: quotes, Category: category}, nil
}

// Attach subscribes the persister to repository changes.
func (p *Persister) Attach(repo *Repository) {
	repo.OnChange(p.saveQuotes)
	repo.OnCategoryChange(p.saveCategory)
}

func (p *Persister) loadQuotes(ctx context.Context) ([]domain.Quote, error) {
	raw, err := p.store.Get(ctx, KeyQuotes)
	if domain.IsNotFound(err) {
		p.logger.InfoContext(ctx, "no stored quotes, using seeds")

		return domain.SeedQuotes(), nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", KeyQuotes, err)
	}

	var quotes []domain.Quote

	err = json.Unmarshal(raw, &quotes)
	if err != nil || quotes == nil {
		p.logger.WarnContext(ctx, "stored quotes unreadable, using seeds", slog.Any("error", err))

		return domain.SeedQuotes(), nil
	}

	return quotes, nil
}

func (p *Persister) loadCategory(ctx context.Context) (string, error) {
	raw, err := p.store.Get(ctx, KeySelectedCategory)
	if domain.IsNotFound(err) {
		return domain.CategoryAll, nil
	}

	if err != nil {
		return "", fmt.Errorf("reading %s: %w", KeySelectedCategory, err)
	}

	return normalizeCategory(string(raw)), nil
}

func (p *Persister) saveQuotes(ctx context.Context, quotes []domain.Quote) {
	data, err := json.Marshal(quotes)
	if err != nil {
		p.logger.ErrorContext(ctx, "encoding quotes", slog.Any("error", err))
		return
	}

	err = p.store.Set(ctx, KeyQuotes, data)
	if err != nil {
		p.logger.ErrorContext(ctx, "persisting quotes failed",
			slog.Int("count", len(quotes)),
			slog.Any("error", err),
		)
	}
}

func (p *Persister) saveCategory(ctx context.Context, category string) {
	err := p.store.Set(ctx, KeySelectedCategory, []byte(category))
	if err != nil {
		p.logger.ErrorContext(ctx, "persisting selected category failed",
			slog.String("category", category),
			slog.Any("error", err),
		)
	}
}
