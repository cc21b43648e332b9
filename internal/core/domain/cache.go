package domain

import "time"

// CacheEntry is a memoised search result.
type CacheEntry struct {
	Key       string         `json:"key"`
	Query     string         `json:"query"`
	Filters   map[string]any `json:"filters,omitempty"`
	Result    []SearchResult `json:"result"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// IsValid reports whether the entry may still be served.
func (e CacheEntry) IsValid(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// CacheStats reports query cache counters.
type CacheStats struct {
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	Evictions   int64   `json:"evictions"`
	HitRate     float64 `json:"hit_rate"`
	MemoryItems int     `json:"memory_items"`
	DiskFiles   int     `json:"disk_files"`
}
