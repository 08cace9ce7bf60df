// Package gridcache memoizes loaded grids by source identity and content
// hash, so an unchanged input is parsed once per process.
package gridcache

import (
	"context"
	"path/filepath"
	"sort"
	"sync"

	"talentmetrics/domain/core"
	"talentmetrics/domain/grid"
	"talentmetrics/internal"
	"talentmetrics/ports"
)

// Key identifies one cached grid
type Key struct {
	Identity string    `json:"identity"`
	Hash     core.Hash `json:"hash"`
}

// Stats reports cache effectiveness
type Stats struct {
	Hits    int `json:"hits"`
	Misses  int `json:"misses"`
	Entries int `json:"entries"`
}

// Observer is told about every lookup
type Observer interface {
	ObserveCache(hit bool)
}

type entry struct {
	key  Key
	path string
	grid *grid.Grid
}

// Cache wraps a loader. A lookup fingerprints the source first and only
// reloads when the content hash differs from the cached one.
type Cache struct {
	loader   ports.GridLoader
	logger   *internal.Logger
	observer Observer

	mu      sync.Mutex
	entries map[string]entry
	hits    int
	misses  int
}

var _ ports.GridLoader = (*Cache)(nil)

// New creates a cache in front of loader
func New(loader ports.GridLoader, logger *internal.Logger) *Cache {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Cache{
		loader:  loader,
		logger:  logger.Named("gridcache"),
		entries: make(map[string]entry),
	}
}

// SetObserver installs a lookup observer, e.g. a metrics recorder
func (c *Cache) SetObserver(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = o
}

// Load returns the cached grid for src when its content is unchanged
func (c *Cache) Load(ctx context.Context, src ports.Source) (*grid.Grid, error) {
	hash, err := c.loader.Fingerprint(ctx, src)
	if err != nil {
		c.Invalidate(src)
		return nil, err
	}
	key := Key{Identity: src.String(), Hash: hash}

	c.mu.Lock()
	if e, ok := c.entries[key.Identity]; ok && e.key.Hash.Equals(hash) {
		c.hits++
		observer := c.observer
		c.mu.Unlock()
		if observer != nil {
			observer.ObserveCache(true)
		}
		c.logger.Debug("hit %s (%s)", key.Identity, hash.Short())
		return e.grid, nil
	}
	c.misses++
	observer := c.observer
	c.mu.Unlock()
	if observer != nil {
		observer.ObserveCache(false)
	}

	g, err := c.loader.Load(ctx, src)
	if err != nil {
		c.Invalidate(src)
		return nil, err
	}

	c.mu.Lock()
	c.entries[key.Identity] = entry{key: key, path: cleanPath(src.Path), grid: g}
	c.mu.Unlock()
	c.logger.Debug("cached %s (%s)", key.Identity, hash.Short())
	return g, nil
}

// Fingerprint delegates to the wrapped loader
func (c *Cache) Fingerprint(ctx context.Context, src ports.Source) (core.Hash, error) {
	return c.loader.Fingerprint(ctx, src)
}

// Invalidate drops the entry for src, reporting whether one existed
func (c *Cache) Invalidate(src ports.Source) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[src.String()]
	delete(c.entries, src.String())
	return ok
}

// InvalidatePath drops every entry read from path, whatever the sheet
func (c *Cache) InvalidatePath(path string) int {
	path = cleanPath(path)
	c.mu.Lock()
	defer c.mu.Unlock()
	dropped := 0
	for id, e := range c.entries {
		if e.path == path {
			delete(c.entries, id)
			dropped++
		}
	}
	return dropped
}

// InvalidateAll empties the cache
func (c *Cache) InvalidateAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[string]entry)
	return n
}

// Stats returns hit/miss counters and the entry count
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Entries: len(c.entries)}
}

// Keys returns the cached keys sorted by identity
func (c *Cache) Keys() []Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]Key, 0, len(c.entries))
	for _, e := range c.entries {
		keys = append(keys, e.key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Identity < keys[j].Identity })
	return keys
}

func cleanPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
