// Package app contains application services that orchestrate use cases.
// This is the application layer in Clean Architecture - it coordinates
// domain logic and infrastructure through ports.
//
// What does NOT belong here:
//   - HTTP/CLI specifics (that's adapters)
//   - Storage queries (that's storage adapters)
//   - Core domain rules (that's the domain layer)
package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/jsamuelsen/quote-manager/internal/domain"
)

// ChangeHook observes the quote list after every mutation.
// Hooks run while the repository holds its write lock, so they see
// snapshots in mutation order and must not call back into the repository.
type ChangeHook func(ctx context.Context, quotes []domain.Quote)

// CategoryHook observes changes to the selected category filter.
type CategoryHook func(ctx context.Context, category string)

// Repository owns the ordered quote list and the selected category filter.
// It is safe for concurrent use.
type Repository struct {
	mu       sync.RWMutex
	quotes   []domain.Quote
	selected string

	changeHooks   []ChangeHook
	categoryHooks []CategoryHook

	intN func(n int) int
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithRandomSource replaces the uniform index source used by PickRandom.
// intN must return a value in [0, n).
func WithRandomSource(intN func(n int) int) RepositoryOption {
	return func(r *Repository) {
		if intN != nil {
			r.intN = intN
		}
	}
}

// WithSelectedCategory sets the initial category filter.
func WithSelectedCategory(category string) RepositoryOption {
	return func(r *Repository) {
		r.selected = normalizeCategory(category)
	}
}

// NewRepository creates a repository holding a copy of initial.
// No hooks fire for the initial state.
func NewRepository(initial []domain.Quote, opts ...RepositoryOption) *Repository {
	r := &Repository{
		quotes:   clone(initial),
		selected: domain.CategoryAll,
		intN:     rand.IntN,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// OnChange registers a hook invoked with the new list after every mutation.
func (r *Repository) OnChange(hook ChangeHook) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.changeHooks = append(r.changeHooks, hook)
}

// OnCategoryChange registers a hook invoked when the selected filter changes.
func (r *Repository) OnCategoryChange(hook CategoryHook) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.categoryHooks = append(r.categoryHooks, hook)
}

// Add validates and appends a quote. Text and category are trimmed.
// On validation failure the list is unchanged.
func (r *Repository) Add(ctx context.Context, text, category string) (domain.Quote, error) {
	q, err := domain.NewQuote(text, category)
	if err != nil {
		return domain.Quote{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.quotes = append(r.quotes, q)
	r.changedLocked(ctx)

	return q, nil
}

// Quotes returns a snapshot of the list.
func (r *Repository) Quotes() []domain.Quote {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return clone(r.quotes)
}

// Len returns the number of stored quotes.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.quotes)
}

// Categories returns the distinct categories in order of first appearance.
func (r *Repository) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return domain.Categories(r.quotes)
}

// PickRandom returns a uniformly chosen quote passing filter.
// An empty filter behaves like domain.CategoryAll.
// Returns a domain.NoQuotesError when nothing matches.
func (r *Repository) PickRandom(filter string) (domain.Quote, error) {
	filter = normalizeCategory(filter)

	r.mu.RLock()
	candidates := domain.Filter(r.quotes, filter)

	if len(candidates) == 0 {
		r.mu.RUnlock()

		return domain.Quote{}, domain.NewNoQuotesError(filter)
	}

	q := candidates[r.intN(len(candidates))]
	r.mu.RUnlock()

	return q, nil
}

// ImportAppend appends quotes as given, without deduplication.
func (r *Repository) ImportAppend(ctx context.Context, quotes []domain.Quote) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.quotes = append(r.quotes, quotes...)
	r.changedLocked(ctx)
}

// ImportJSON parses an exported quote document and appends its items.
// A malformed document leaves the list unchanged.
func (r *Repository) ImportJSON(ctx context.Context, src io.Reader) (int, error) {
	quotes, err := DecodeQuotes(src)
	if err != nil {
		return 0, err
	}

	r.ImportAppend(ctx, quotes)

	return len(quotes), nil
}

// Export renders the whole list as indented JSON.
func (r *Repository) Export() ([]byte, error) {
	data, err := json.MarshalIndent(r.Quotes(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding quotes: %w", err)
	}

	return data, nil
}

// ReplaceAll swaps the whole list.
func (r *Repository) ReplaceAll(ctx context.Context, quotes []domain.Quote) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.quotes = clone(quotes)
	r.changedLocked(ctx)
}

// Reconcile replaces the list with fn(current) in one critical section,
// so mutations racing with a slow fetch are merged rather than lost.
func (r *Repository) Reconcile(ctx context.Context, fn func(current []domain.Quote) []domain.Quote) []domain.Quote {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.quotes = clone(fn(clone(r.quotes)))
	r.changedLocked(ctx)

	return clone(r.quotes)
}

// SelectedCategory returns the current filter.
func (r *Repository) SelectedCategory() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.selected
}

// SelectCategory stores a new filter. An empty value resets it to domain.CategoryAll.
// The category does not need to exist yet.
func (r *Repository) SelectCategory(ctx context.Context, category string) string {
	category = normalizeCategory(category)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.selected = category
	for _, hook := range r.categoryHooks {
		hook(ctx, category)
	}

	return category
}

func (r *Repository) changedLocked(ctx context.Context) {
	if len(r.changeHooks) == 0 {
		return
	}

	snapshot := clone(r.quotes)
	for _, hook := range r.changeHooks {
		hook(ctx, snapshot)
	}
}

// importItem mirrors the exported shape. Unknown fields are ignored.
type importItem struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// DecodeQuotes parses a JSON array of {text, category} objects.
// Every item is validated like a manual add; the first invalid item rejects
// the whole document with a domain.ImportParseError.
func DecodeQuotes(src io.Reader) ([]domain.Quote, error) {
	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, domain.NewImportParseError("reading document", err)
	}

	items, err := decodeImportDocument(raw)
	if err != nil {
		return nil, err
	}

	return normalizeImportItems(items)
}

func decodeImportDocument(raw []byte) ([]importItem, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, domain.NewImportParseError("document is empty", nil)
	}

	if !json.Valid(trimmed) {
		return nil, domain.NewImportParseError("invalid JSON", nil)
	}

	if trimmed[0] != '[' {
		return nil, domain.NewImportParseError("document is not an array", nil)
	}

	var items []importItem

	err := json.Unmarshal(trimmed, &items)
	if err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, domain.NewImportParseError("items must be objects with string text and category", err)
		}

		return nil, domain.NewImportParseError("invalid JSON", err)
	}

	return items, nil
}

func normalizeImportItems(items []importItem) ([]domain.Quote, error) {
	quotes := make([]domain.Quote, 0, len(items))

	for i, item := range items {
		q, err := domain.NewQuote(item.Text, item.Category)
		if err != nil {
			var validation *domain.ValidationError
			if errors.As(err, &validation) {
				return nil, domain.NewImportItemError(i, validation.Field+" "+validation.Message)
			}

			return nil, domain.NewImportItemError(i, err.Error())
		}

		quotes = append(quotes, q)
	}

	return quotes, nil
}

func normalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return domain.CategoryAll
	}

	return category
}

// clone always returns a non-nil slice so empty lists encode as [].
func clone(quotes []domain.Quote) []domain.Quote {
	out := make([]domain.Quote, len(quotes))
	copy(out, quotes)

	return out
}
