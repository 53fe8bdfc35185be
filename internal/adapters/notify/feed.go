// Package notify keeps the short-lived user notifications shown by the
// presentation adapters.
package notify

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen/quote-manager/internal/platform/logging"
	"github.com/jsamuelsen/quote-manager/internal/ports"
)

const (
	DefaultTTL      = 3 * time.Second
	DefaultCapacity = 32
)

// Config holds feed settings.
type Config struct {
	TTL      time.Duration
	Capacity int
}

// Feed is an in-memory ports.Notifier whose entries expire after TTL.
type Feed struct {
	mu          sync.Mutex
	items       []ports.Notification
	subscribers []func(ports.Notification)

	ttl      time.Duration
	capacity int
	now      func() time.Time
	logger   *slog.Logger
}

// New creates a feed. Zero config values fall back to the defaults.
func New(cfg Config, logger *slog.Logger) *Feed {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Feed{
		ttl:      cfg.TTL,
		capacity: cfg.Capacity,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "notify")),
	}
}

// Notify implements ports.Notifier.
func (f *Feed) Notify(ctx context.Context, message string) {
	now := f.now()
	n := ports.Notification{
		ID:        uuid.NewString(),
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(f.ttl),
	}

	f.mu.Lock()
	f.pruneLocked(now)
	f.items = append(f.items, n)

	if over := len(f.items) - f.capacity; over > 0 {
		f.items = slices.Delete(f.items, 0, over)
	}

	subscribers := slices.Clone(f.subscribers)
	f.mu.Unlock()

	logger := f.logger
	if l, ok := logging.Lookup(ctx); ok {
		logger = l
	}

	logger.Log(ctx, logging.LevelTrace, "notification", slog.String("message", message))

	for _, fn := range subscribers {
		fn(n)
	}
}

// Active returns the unexpired notifications, oldest first.
func (f *Feed) Active() []ports.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pruneLocked(f.now())

	out := make([]ports.Notification, len(f.items))
	copy(out, f.items)

	return out
}

// Subscribe registers fn to receive every new notification.
func (f *Feed) Subscribe(fn func(ports.Notification)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.subscribers = append(f.subscribers, fn)
}

func (f *Feed) pruneLocked(now time.Time) {
	f.items = slices.DeleteFunc(f.items, func(n ports.Notification) bool {
		return !now.Before(n.ExpiresAt)
	})
}
