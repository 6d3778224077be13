// Package memory is a process-local cache.Store for tests and ephemeral
// shells.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/aussiebroadwan/reels/pkg/session/cache"
)

type Store struct {
	mu     sync.RWMutex
	data   map[string]string
	closed bool
}

func New() *Store {
	return &Store{data: make(map[string]string)}
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, cache.ErrClosed
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *Store) SetMany(_ context.Context, entries map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return cache.ErrClosed
	}
	maps.Copy(s.data, entries)
	return nil
}

func (s *Store) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return cache.ErrClosed
	}
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

// Len returns the number of entries held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var _ cache.Store = (*Store)(nil)
