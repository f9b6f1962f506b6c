// Package repository defines the observation store interface and errors.
package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/tourstat/compass/internal/domain/model"
)

// Snapshot is an immutable view of the store taken before a run. Entities are
// ordered by id; that order is the stable tie-break order for every
// downstream stage.
type Snapshot struct {
	Entities     []model.Entity
	Observations map[string][]model.Observation
}

// Store provides write access during ingestion and snapshot reads for runs.
type Store interface {
	// Add records one observation, registering the entity on first sight.
	// Returns false when the (entity, period) pair was already present;
	// the first row wins and the duplicate is dropped.
	Add(ctx context.Context, entity model.Entity, obs model.Observation) bool

	// Snapshot returns a stable, deterministic view of all observations.
	Snapshot(ctx context.Context) Snapshot

	// Count returns the number of observations held.
	Count(ctx context.Context) int
}

// MemoryStore implements Store in memory.
type MemoryStore struct {
	mu       sync.RWMutex
	entities map[string]model.Entity
	obs      map[string][]model.Observation
	seen     map[string]map[model.Period]struct{}
	count    int
}

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// NewMemoryStore creates an empty in-memory observation store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		entities: make(map[string]model.Entity),
		obs:      make(map[string][]model.Observation),
		seen:     make(map[string]map[model.Period]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add records one observation, first-wins per (entity, period).
func (s *MemoryStore) Add(_ context.Context, entity model.Entity, obs model.Observation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := obs.EntityID
	periods, ok := s.seen[id]
	if !ok {
		periods = make(map[model.Period]struct{})
		s.seen[id] = periods
		s.entities[id] = entity
	}
	if _, dup := periods[obs.Period]; dup {
		return false
	}
	periods[obs.Period] = struct{}{}
	s.obs[id] = append(s.obs[id], obs)
	s.count++
	return true
}

// Snapshot copies the store into an entity-id-ordered view.
func (s *MemoryStore) Snapshot(_ context.Context) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Entities:     make([]model.Entity, 0, len(s.entities)),
		Observations: make(map[string][]model.Observation, len(s.obs)),
	}
	for _, e := range s.entities {
		snap.Entities = append(snap.Entities, e)
	}
	sort.Slice(snap.Entities, func(i, j int) bool {
		return snap.Entities[i].ID < snap.Entities[j].ID
	})
	for id, list := range s.obs {
		cp := make([]model.Observation, len(list))
		copy(cp, list)
		snap.Observations[id] = cp
	}
	return snap
}

// Count returns the number of observations held.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}
