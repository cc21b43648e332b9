package driving

import "github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"

// CacheService memoises search results by query, filters and version.
type CacheService interface {
	// Get returns a cached result, or false on a miss.
	Get(query string, filters map[string]any, version string) ([]domain.SearchResult, bool)

	// Set stores a result. Disk failures are logged, not returned.
	Set(query string, result []domain.SearchResult, filters map[string]any, version string)

	// Clear removes every entry from memory and disk.
	Clear() error

	// Stats returns counters without side effects.
	Stats() domain.CacheStats
}
