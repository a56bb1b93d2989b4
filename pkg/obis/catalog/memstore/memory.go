package memstore

import (
	"context"
	"slices"
	"sync"

	"github.com/cognicore/obisquery/pkg/obis/catalog"
)

// Store is an in-memory implementation of catalog.Store for tests and for
// runs that should leave nothing on disk.
type Store struct {
	mu    sync.RWMutex
	sets  map[catalog.Kind][]catalog.Entity
	saves int
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{sets: make(map[catalog.Kind][]catalog.Entity)}
}

// Close implements catalog.Store.
func (s *Store) Close() error { return nil }

// Load returns the saved set for kind.
func (s *Store) Load(ctx context.Context, kind catalog.Kind) ([]catalog.Entity, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entities, ok := s.sets[kind]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(entities), true, nil
}

// Save replaces the set for kind.
func (s *Store) Save(ctx context.Context, kind catalog.Kind, entities []catalog.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sets[kind] = slices.Clone(entities)
	s.saves++
	return nil
}

// Purge drops every set.
func (s *Store) Purge(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sets = make(map[catalog.Kind][]catalog.Entity)
	return nil
}

// Saves reports how many times Save was called.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
