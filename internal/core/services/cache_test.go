package services

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
)

// mockCacheDisk implements driven.CacheDisk for testing.
type mockCacheDisk struct {
	mu       sync.Mutex
	entries  map[string]*domain.CacheEntry
	corrupt  map[string]bool
	writeErr error
}

func newMockCacheDisk() *mockCacheDisk {
	return &mockCacheDisk{
		entries: make(map[string]*domain.CacheEntry),
		corrupt: make(map[string]bool),
	}
}

func (m *mockCacheDisk) Read(key string) (*domain.CacheEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.corrupt[key] {
		return nil, fmt.Errorf("decode %s: %w", key, domain.ErrCacheCorrupt)
	}
	entry, ok := m.entries[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *entry
	return &c, nil
}

func (m *mockCacheDisk) Write(key string, entry *domain.CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	c := *entry
	m.entries[key] = &c
	return nil
}

func (m *mockCacheDisk) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	delete(m.corrupt, key)
	return nil
}

func (m *mockCacheDisk) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*domain.CacheEntry)
	m.corrupt = make(map[string]bool)
	return nil
}

func (m *mockCacheDisk) Count() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries) + len(m.corrupt), nil
}

func sampleResults(id string) []domain.SearchResult {
	return []domain.SearchResult{{
		ShopID:   id,
		ShopName: "가게" + id,
		Score:    0.8,
		Menus:    []domain.Menu{{ID: "m" + id, Name: "메뉴", Price: 5000}},
	}}
}

func TestCacheKey(t *testing.T) {
	base := CacheKey("치킨", map[string]any{"budget": 10000, "location": "강남"}, "v1")

	assert.Len(t, base, 64)
	assert.Equal(t, base, CacheKey("  치킨 ", map[string]any{"location": "강남", "budget": 10000}, "v1"),
		"normalised query and filter order do not matter")
	assert.NotEqual(t, base, CacheKey("치킨", map[string]any{"budget": 20000, "location": "강남"}, "v1"))
	assert.NotEqual(t, base, CacheKey("치킨", map[string]any{"budget": 10000, "location": "강남"}, "v2"))
	assert.Equal(t, CacheKey("Pizza", nil, "v1"), CacheKey("pizza", map[string]any{}, "v1"))
}

func TestQueryCache_SetAndGet(t *testing.T) {
	c := NewQueryCache(nil, time.Hour, 10)

	_, ok := c.Get("치킨", nil, "v1")
	assert.False(t, ok)

	c.Set("치킨", sampleResults("1"), nil, "v1")
	got, ok := c.Get("치킨", nil, "v1")
	require.True(t, ok)
	assert.Equal(t, sampleResults("1"), got)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
	assert.Equal(t, 1, stats.MemoryItems)
	assert.Equal(t, 0, stats.DiskFiles)
}

func TestQueryCache_ReturnsCopies(t *testing.T) {
	c := NewQueryCache(nil, time.Hour, 10)
	results := sampleResults("1")
	c.Set("치킨", results, nil, "v1")

	results[0].Menus[0].Name = "mutated"
	got, _ := c.Get("치킨", nil, "v1")
	got[0].Menus[0].Price = 1

	again, _ := c.Get("치킨", nil, "v1")
	assert.Equal(t, "메뉴", again[0].Menus[0].Name)
	assert.Equal(t, 5000, again[0].Menus[0].Price)
}

func TestQueryCache_Expiry(t *testing.T) {
	clock := newTestClock()
	disk := newMockCacheDisk()
	c := NewQueryCache(disk, time.Minute, 10, WithCacheClock(clock.Now))

	c.Set("치킨", sampleResults("1"), nil, "v1")
	clock.Advance(2 * time.Minute)

	_, ok := c.Get("치킨", nil, "v1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Stats().MemoryItems)
	n, _ := disk.Count()
	assert.Equal(t, 0, n, "expired entries are removed from disk too")
}

func TestQueryCache_DiskPromotion(t *testing.T) {
	disk := newMockCacheDisk()
	first := NewQueryCache(disk, time.Hour, 10)
	first.Set("피자", sampleResults("3"), map[string]any{"budget": 20000}, "v1")

	// A fresh process sees only the disk tier.
	second := NewQueryCache(disk, time.Hour, 10)
	got, ok := second.Get("피자", map[string]any{"budget": 20000}, "v1")

	require.True(t, ok)
	assert.Equal(t, sampleResults("3"), got)
	assert.Equal(t, 1, second.Stats().MemoryItems)
	assert.Equal(t, 1, second.Stats().DiskFiles)
}

func TestQueryCache_ExpiredOnDisk(t *testing.T) {
	clock := newTestClock()
	disk := newMockCacheDisk()
	NewQueryCache(disk, time.Minute, 10, WithCacheClock(clock.Now)).Set("피자", sampleResults("3"), nil, "v1")
	clock.Advance(time.Hour)

	c := NewQueryCache(disk, time.Minute, 10, WithCacheClock(clock.Now))
	_, ok := c.Get("피자", nil, "v1")

	assert.False(t, ok)
	n, _ := disk.Count()
	assert.Equal(t, 0, n)
}

func TestQueryCache_CorruptDiskEntry(t *testing.T) {
	disk := newMockCacheDisk()
	key := CacheKey("치킨", nil, "v1")
	disk.corrupt[key] = true
	c := NewQueryCache(disk, time.Hour, 10)

	_, ok := c.Get("치킨", nil, "v1")

	assert.False(t, ok)
	assert.Equal(t, int64(1), c.Stats().Misses)
	assert.False(t, disk.corrupt[key], "corrupt entry is deleted")
}

func TestQueryCache_DiskWriteFailureKeepsMemory(t *testing.T) {
	disk := newMockCacheDisk()
	disk.writeErr = errors.New("read-only")
	c := NewQueryCache(disk, time.Hour, 10)

	c.Set("치킨", sampleResults("1"), nil, "v1")

	_, ok := c.Get("치킨", nil, "v1")
	assert.True(t, ok)
}

func TestQueryCache_Eviction(t *testing.T) {
	clock := newTestClock()
	disk := newMockCacheDisk()
	c := NewQueryCache(disk, time.Hour, 20, WithCacheClock(clock.Now))

	for i := 0; i < 20; i++ {
		c.Set(fmt.Sprintf("q%02d", i), sampleResults("1"), nil, "v1")
		clock.Advance(time.Second)
	}
	assert.Equal(t, 20, c.Stats().MemoryItems)

	c.Set("overflow", sampleResults("2"), nil, "v1")

	stats := c.Stats()
	assert.Equal(t, 19, stats.MemoryItems, "oldest tenth evicted before insert")
	assert.Equal(t, int64(2), stats.Evictions)
	assert.Equal(t, 19, stats.DiskFiles)

	_, ok := c.Get("q00", nil, "v1")
	assert.False(t, ok)
	_, ok = c.Get("q01", nil, "v1")
	assert.False(t, ok)
	_, ok = c.Get("q02", nil, "v1")
	assert.True(t, ok)
}

func TestQueryCache_EvictionEvictsAtLeastOne(t *testing.T) {
	c := NewQueryCache(nil, time.Hour, 2)

	c.Set("a", sampleResults("1"), nil, "v1")
	c.Set("b", sampleResults("1"), nil, "v1")
	c.Set("c", sampleResults("1"), nil, "v1")

	stats := c.Stats()
	assert.Equal(t, 2, stats.MemoryItems)
	assert.Equal(t, int64(1), stats.Evictions)
}

func TestQueryCache_OverwriteDoesNotEvict(t *testing.T) {
	c := NewQueryCache(nil, time.Hour, 1)

	c.Set("a", sampleResults("1"), nil, "v1")
	c.Set("a", sampleResults("2"), nil, "v1")

	got, ok := c.Get("a", nil, "v1")
	require.True(t, ok)
	assert.Equal(t, "2", got[0].ShopID)
	assert.Equal(t, int64(0), c.Stats().Evictions)
}

func TestQueryCache_Clear(t *testing.T) {
	disk := newMockCacheDisk()
	c := NewQueryCache(disk, time.Hour, 10)
	c.Set("a", sampleResults("1"), nil, "v1")
	c.Set("b", sampleResults("1"), nil, "v1")

	require.NoError(t, c.Clear())

	stats := c.Stats()
	assert.Equal(t, 0, stats.MemoryItems)
	assert.Equal(t, 0, stats.DiskFiles)
	_, ok := c.Get("a", nil, "v1")
	assert.False(t, ok)
}

func TestQueryCache_Concurrent(t *testing.T) {
	c := NewQueryCache(newMockCacheDisk(), time.Hour, 50)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q := fmt.Sprintf("q%d", i%5)
			c.Set(q, sampleResults("1"), nil, "v1")
			_, _ = c.Get(q, nil, "v1")
		}(i)
	}
	wg.Wait()

	stats := c.Stats()
	assert.Equal(t, 5, stats.MemoryItems)
	assert.Equal(t, int64(20), stats.Hits+stats.Misses)
}
