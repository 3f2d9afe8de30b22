// Package state holds the live application state and everything that keeps
// it consistent: the mutex-guarded cache, the staleness sweeper and the write
// scheduler that persists the cache to disk.
package state

import (
	"context"
	"sync"

	"talkie/internal/domain"
)

// Cache is the single in-memory copy of the application state. Every read and
// write goes through its mutex, so request handlers observe a linearized view.
type Cache struct {
	mu   sync.Mutex
	data domain.Snapshot
}

func NewCache(initial domain.Snapshot) *Cache {
	initial.Normalize()
	return &Cache{data: initial}
}

// View runs fn with exclusive access. fn must not retain s.
func (c *Cache) View(fn func(s *domain.Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.data)
}

// Update runs fn with exclusive access and reports whether fn changed state.
func (c *Cache) Update(fn func(s *domain.Snapshot) bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(&c.data)
}

// Snapshot returns a deep copy of the current state.
func (c *Cache) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data.Clone()
}

// WriteRequester is asked to persist the cache after a change.
type WriteRequester interface {
	RequestWrite()
}

// Store couples the cache with the scheduler that persists it.
type Store struct {
	cache  *Cache
	writes WriteRequester
}

func NewStore(cache *Cache, writes WriteRequester) *Store {
	return &Store{cache: cache, writes: writes}
}

var _ domain.StateStore = (*Store)(nil)

func (s *Store) View(ctx context.Context, fn func(s *domain.Snapshot)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.cache.View(fn)
	return nil
}

func (s *Store) Update(ctx context.Context, fn func(s *domain.Snapshot) bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.cache.Update(fn) {
		s.writes.RequestWrite()
	}
	return nil
}
