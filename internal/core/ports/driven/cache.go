package driven

import "github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"

// CacheDisk is the persistent tier of the query cache.
type CacheDisk interface {
	// Read returns the entry stored under key.
	// Returns domain.ErrNotFound if absent and domain.ErrCacheCorrupt
	// (wrapped) if the stored bytes cannot be decoded.
	Read(key string) (*domain.CacheEntry, error)

	// Write stores an entry under key.
	Write(key string, entry *domain.CacheEntry) error

	// Delete removes an entry. Deleting a missing entry is not an error.
	Delete(key string) error

	// Clear removes all entries.
	Clear() error

	// Count returns the number of stored entries.
	Count() (int, error)
}
