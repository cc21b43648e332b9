package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driven"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driving"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/logger"
)

// Ensure QueryCache implements the interface.
var _ driving.CacheService = (*QueryCache)(nil)

// Cache defaults.
const (
	DefaultCacheTTL     = time.Hour
	DefaultCacheMaxSize = 1000
)

// QueryCache memoises search results in memory with an optional disk tier.
// A single mutex guards the memory map and the counters.
type QueryCache struct {
	mu      sync.Mutex
	memory  map[string]*domain.CacheEntry
	disk    driven.CacheDisk
	ttl     time.Duration
	maxSize int
	now     func() time.Time

	hits      int64
	misses    int64
	evictions int64
}

// CacheOption configures a QueryCache.
type CacheOption func(*QueryCache)

// WithCacheClock overrides the time source.
func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *QueryCache) { c.now = now }
}

// NewQueryCache creates a cache. disk may be nil for a memory-only cache.
func NewQueryCache(disk driven.CacheDisk, ttl time.Duration, maxSize int, opts ...CacheOption) *QueryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if maxSize <= 0 {
		maxSize = DefaultCacheMaxSize
	}
	c := &QueryCache{
		memory:  make(map[string]*domain.CacheEntry),
		disk:    disk,
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CacheKey hashes the normalised query, filters and version.
// Map keys are serialised in sorted order, so equal filters hash equally.
func CacheKey(query string, filters map[string]any, version string) string {
	if filters == nil {
		filters = map[string]any{}
	}
	payload := struct {
		Query   string         `json:"query"`
		Filters map[string]any `json:"filters"`
		Version string         `json:"version"`
	}{
		Query:   strings.ToLower(strings.TrimSpace(query)),
		Filters: filters,
		Version: version,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		// Unencodable filters still get a stable, query-scoped key.
		data = []byte(payload.Query + "\x00" + version)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get returns a cached result. Expired and corrupt entries are deleted and count as misses.
func (c *QueryCache) Get(query string, filters map[string]any, version string) ([]domain.SearchResult, bool) {
	key := CacheKey(query, filters, version)
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.memory[key]; ok {
		if entry.IsValid(now) {
			c.hits++
			return cloneResults(entry.Result), true
		}
		delete(c.memory, key)
		c.deleteFromDisk(key)
		c.misses++
		return nil, false
	}

	if c.disk != nil {
		entry, err := c.disk.Read(key)
		switch {
		case err == nil && entry.IsValid(now):
			c.insert(key, entry)
			c.hits++
			return cloneResults(entry.Result), true
		case err == nil:
			c.deleteFromDisk(key)
		case errors.Is(err, domain.ErrNotFound):
		default:
			logger.Warn("Query cache: dropping unreadable entry %s: %v", shortHash(key), err)
			c.deleteFromDisk(key)
		}
	}

	c.misses++
	return nil, false
}

// Set stores a result in memory and, best effort, on disk.
func (c *QueryCache) Set(query string, result []domain.SearchResult, filters map[string]any, version string) {
	key := CacheKey(query, filters, version)
	now := c.now()
	entry := &domain.CacheEntry{
		Key:       key,
		Query:     query,
		Filters:   filters,
		Result:    cloneResults(result),
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.insert(key, entry)
	if c.disk != nil {
		if err := c.disk.Write(key, entry); err != nil {
			logger.Warn("Query cache: disk write failed: %v", err)
		}
	}
}

// insert adds to the memory tier, evicting first when full. Caller holds mu.
func (c *QueryCache) insert(key string, entry *domain.CacheEntry) {
	if _, exists := c.memory[key]; !exists && len(c.memory) >= c.maxSize {
		c.evict()
	}
	c.memory[key] = entry
}

// evict removes the oldest tenth of the memory tier, at least one entry,
// from memory and disk. Caller holds mu.
func (c *QueryCache) evict() {
	type aged struct {
		key     string
		created time.Time
	}
	entries := make([]aged, 0, len(c.memory))
	for k, e := range c.memory {
		entries = append(entries, aged{key: k, created: e.CreatedAt})
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].created.Equal(entries[j].created) {
			return entries[i].created.Before(entries[j].created)
		}
		return entries[i].key < entries[j].key
	})

	n := max(1, len(entries)/10)
	for _, e := range entries[:n] {
		delete(c.memory, e.key)
		c.deleteFromDisk(e.key)
	}
	c.evictions += int64(n)
	logger.Debug("Query cache: evicted %d entries", n)
}

func (c *QueryCache) deleteFromDisk(key string) {
	if c.disk == nil {
		return
	}
	if err := c.disk.Delete(key); err != nil {
		logger.Warn("Query cache: disk delete failed: %v", err)
	}
}

// Clear empties memory and deletes every disk entry.
func (c *QueryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.memory = make(map[string]*domain.CacheEntry)
	if c.disk != nil {
		return c.disk.Clear()
	}
	return nil
}

// Stats returns the cache counters.
func (c *QueryCache) Stats() domain.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := domain.CacheStats{
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		MemoryItems: len(c.memory),
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}
	if c.disk != nil {
		n, err := c.disk.Count()
		if err != nil {
			logger.Warn("Query cache: disk count failed: %v", err)
		}
		stats.DiskFiles = n
	}
	return stats
}

// cloneResults copies results so cached slices are never shared with callers.
func cloneResults(in []domain.SearchResult) []domain.SearchResult {
	if in == nil {
		return nil
	}
	out := make([]domain.SearchResult, len(in))
	for i, r := range in {
		r.Menus = slices.Clone(r.Menus)
		r.Tags = slices.Clone(r.Tags)
		r.AffordableMenus = slices.Clone(r.AffordableMenus)
		out[i] = r
	}
	return out
}
