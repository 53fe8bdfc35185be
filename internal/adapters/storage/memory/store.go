// Package memory provides a process-scoped key-value store.
// It backs the session store, whose values must not outlive the process.
package memory

import (
	"context"
	"sync"

	"github.com/jsamuelsen/quote-manager/internal/domain"
)

// Store is a map guarded by a RWMutex. Values are copied on the way in and out.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New creates an empty store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Get implements ports.KeyValueStore.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, domain.NewNotFoundError("key", key)
	}

	return append([]byte(nil), v...), nil
}

// Set implements ports.KeyValueStore.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = append([]byte(nil), value...)

	return nil
}

// Delete implements ports.KeyValueStore.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data)
}
