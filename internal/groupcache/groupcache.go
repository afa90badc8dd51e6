// Package groupcache is a write-invalidate cache for leaderboard reads.
//
// Entries are keyed by (category, workout) for per-workout leaderboards and
// by category for overall rankings. There is no TTL: a stale ranking is a
// correctness bug, so every mutating operation must invalidate the keys it
// touched.
//
// Readers compute views outside the writers' locks, so a writer can commit
// and invalidate between a reader's snapshot and its store. Each category
// carries an epoch that every invalidation bumps; Set calls carry the epoch
// observed before the snapshot and are dropped when it has moved on, so an
// outdated view can never be re-cached over an invalidation.
package groupcache

import (
	"fmt"
	"sync"
)

// Cache holds computed leaderboard views between mutations.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]any
	epochs  map[int64]uint64
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]any),
		epochs:  make(map[int64]uint64),
	}
}

func groupKey(categoryID, workoutID int64) string {
	return fmt.Sprintf("workout:%d:%d", categoryID, workoutID)
}

func categoryKey(categoryID int64) string {
	return fmt.Sprintf("category:%d", categoryID)
}

// Epoch returns the category's current invalidation epoch. Capture it
// before computing a view and pass it to SetGroup/SetCategory.
func (c *Cache) Epoch(categoryID int64) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epochs[categoryID]
}

// GetGroup returns the cached per-workout view for (categoryID, workoutID).
func (c *Cache) GetGroup(categoryID, workoutID int64) (any, bool) {
	return c.get(groupKey(categoryID, workoutID))
}

// SetGroup stores the per-workout view computed at the given epoch. The
// store is dropped if the category has been invalidated since.
func (c *Cache) SetGroup(categoryID, workoutID int64, epoch uint64, v any) {
	c.set(categoryID, groupKey(categoryID, workoutID), epoch, v)
}

// GetCategory returns the cached overall ranking for a category.
func (c *Cache) GetCategory(categoryID int64) (any, bool) {
	return c.get(categoryKey(categoryID))
}

// SetCategory stores the overall ranking computed at the given epoch. The
// store is dropped if the category has been invalidated since.
func (c *Cache) SetCategory(categoryID int64, epoch uint64, v any) {
	c.set(categoryID, categoryKey(categoryID), epoch, v)
}

// InvalidateGroup drops the per-workout view and the category ranking that
// depends on it, and bumps the category epoch.
func (c *Cache) InvalidateGroup(categoryID, workoutID int64) {
	c.mu.Lock()
	delete(c.entries, groupKey(categoryID, workoutID))
	delete(c.entries, categoryKey(categoryID))
	c.epochs[categoryID]++
	c.mu.Unlock()
}

// InvalidateCategory drops every entry belonging to the category and bumps
// its epoch.
func (c *Cache) InvalidateCategory(categoryID int64) {
	prefix := fmt.Sprintf("workout:%d:", categoryID)
	c.mu.Lock()
	delete(c.entries, categoryKey(categoryID))
	for k := range c.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(c.entries, k)
		}
	}
	c.epochs[categoryID]++
	c.mu.Unlock()
}

func (c *Cache) get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *Cache) set(categoryID int64, key string, epoch uint64, v any) {
	c.mu.Lock()
	if c.epochs[categoryID] == epoch {
		c.entries[key] = v
	}
	c.mu.Unlock()
}
