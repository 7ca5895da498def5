// Package cache stores prior search results keyed by normalized query.
//
// The in-memory map is authoritative. When a cache directory is
// configured, entries are mirrored to SQLite so they survive process
// restarts; mirror failures are logged and never fail the request path.
package cache

import (
	"sync"
	"time"

	"github.com/abelbrown/zeitgeist/internal/logging"
	"github.com/abelbrown/zeitgeist/internal/search"
)

// DefaultMaxEntries bounds cache growth when the config leaves the cap unset.
const DefaultMaxEntries = 512

type entry struct {
	results   []search.Result
	createdAt time.Time
	lastUsed  time.Time
}

// Cache is a TTL-bounded query result cache with LRU eviction.
// Safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	enabled    bool
	ttl        time.Duration
	maxEntries int
	entries    map[string]*entry
	mirror     *mirror

	// now is swappable for tests
	now func() time.Time
}

// Options configures a Cache.
type Options struct {
	Enabled    bool
	TTL        time.Duration
	MaxEntries int    // 0 means unbounded
	Directory  string // non-empty enables the SQLite mirror
}

// Open creates a Cache. If a directory is configured, unexpired mirror
// entries are loaded so a restarted process starts warm.
func Open(opts Options) (*Cache, error) {
	c := &Cache{
		enabled:    opts.Enabled,
		ttl:        opts.TTL,
		maxEntries: opts.MaxEntries,
		entries:    make(map[string]*entry),
		now:        time.Now,
	}

	if opts.Enabled && opts.Directory != "" {
		m, err := openMirror(opts.Directory)
		if err != nil {
			return nil, err
		}
		c.mirror = m
		c.warmLoad()
	}

	return c, nil
}

// warmLoad pulls unexpired entries from the mirror into memory.
func (c *Cache) warmLoad() {
	cutoff := c.now().Add(-c.ttl)
	loaded, err := c.mirror.loadSince(cutoff)
	if err != nil {
		logging.Warn("cache mirror load failed", "err", err)
		return
	}
	for key, e := range loaded {
		e.lastUsed = e.createdAt
		c.entries[key] = e
	}
	if len(loaded) > 0 {
		logging.Debug("cache warmed from mirror", "entries", len(loaded))
	}
}

// Get returns the cached results for key if an unexpired entry exists.
// Expired entries are treated as absent and evicted on the spot.
func (c *Cache) Get(key string) ([]search.Result, bool) {
	if !c.enabled {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	now := c.now()
	if now.Sub(e.createdAt) > c.ttl {
		delete(c.entries, key)
		if c.mirror != nil {
			if err := c.mirror.delete(key); err != nil {
				logging.Warn("cache mirror delete failed", "key", key, "err", err)
			}
		}
		return nil, false
	}

	e.lastUsed = now

	// Copy so callers cannot mutate the cached slice.
	results := make([]search.Result, len(e.results))
	copy(results, e.results)
	return results, true
}

// Put stores results for key, overwriting any existing entry. A no-op
// when caching is disabled.
func (c *Cache) Put(key string, results []search.Result) {
	if !c.enabled {
		return
	}

	stored := make([]search.Result, len(results))
	copy(stored, results)

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[key] = &entry{results: stored, createdAt: now, lastUsed: now}
	c.evictOverCap()

	if c.mirror != nil {
		if err := c.mirror.put(key, stored, now); err != nil {
			logging.Warn("cache mirror write failed", "key", key, "err", err)
		}
	}
}

// evictOverCap drops least-recently-used entries until the cache fits.
// Caller must hold c.mu.
func (c *Cache) evictOverCap() {
	if c.maxEntries <= 0 {
		return
	}
	for len(c.entries) > c.maxEntries {
		var oldestKey string
		var oldest time.Time
		for key, e := range c.entries {
			if oldestKey == "" || e.lastUsed.Before(oldest) {
				oldestKey = key
				oldest = e.lastUsed
			}
		}
		delete(c.entries, oldestKey)
		if c.mirror != nil {
			if err := c.mirror.delete(oldestKey); err != nil {
				logging.Warn("cache mirror delete failed", "key", oldestKey, "err", err)
			}
		}
		logging.Debug("cache evicted LRU entry", "key", oldestKey)
	}
}

// Len returns the number of entries currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close flushes and closes the disk mirror, if any.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mirror != nil {
		return c.mirror.close()
	}
	return nil
}
