// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrUnavailable, etc.)
//   - Keep interfaces small and focused
package ports

import (
	"context"
	"time"

	"github.com/jsamuelsen/quote-manager/internal/domain"
)

// RemoteSource is the server quotes are synchronized with.
//
// Key considerations:
//   - Handle timeouts via context deadline
//   - Map transport failures to domain.ErrUnavailable
//   - Translate remote items to domain quotes
type RemoteSource interface {
	// FetchQuotes returns the server's items as quotes in server order.
	// Every returned quote carries domain.CategoryServer.
	FetchQuotes(ctx context.Context) ([]domain.Quote, error)

	// SubmitQuote posts a single quote. The response body is not inspected.
	SubmitQuote(ctx context.Context, q domain.Quote) error
}

// KeyValueStore is a string-keyed blob store.
// The persistent store survives restarts; the session store lives for one process.
type KeyValueStore interface {
	// Get returns the stored value.
	// Returns domain.ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Notification is a short-lived message shown to the user.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Notifier publishes transient user-facing messages.
type Notifier interface {
	Notify(ctx context.Context, message string)
}
