package disk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driven"
)

// Ensure CacheDisk implements the interface.
var _ driven.CacheDisk = (*CacheDisk)(nil)

const cacheExt = ".json"

// CacheDisk stores query cache entries as <dir>/<key>.json.
type CacheDisk struct {
	dir string
}

// NewCacheDisk creates the cache directory if needed.
func NewCacheDisk(dir string) (*CacheDisk, error) {
	if dir == "" {
		return nil, errors.New("cache directory is required")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &CacheDisk{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *CacheDisk) Dir() string {
	return c.dir
}

func (c *CacheDisk) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("%w: cache key %q", domain.ErrInvalidInput, key)
	}
	return filepath.Join(c.dir, key+cacheExt), nil
}

// Read returns the entry stored under key.
func (c *CacheDisk) Read(key string) (*domain.CacheEntry, error) {
	path, err := c.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read cache entry: %w", err)
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCacheCorrupt, err)
	}
	return &entry, nil
}

// Write stores an entry under key.
func (c *CacheDisk) Write(key string, entry *domain.CacheEntry) error {
	path, err := c.path(key)
	if err != nil {
		return err
	}
	return writeJSON(path, entry)
}

// Delete removes an entry. Deleting a missing entry is not an error.
func (c *CacheDisk) Delete(key string) error {
	path, err := c.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// Clear removes all entries.
func (c *CacheDisk) Clear() error {
	names, err := c.entries()
	if err != nil {
		return err
	}
	var errs []error
	for _, name := range names {
		if err := os.Remove(filepath.Join(c.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("clear cache: %w", errors.Join(errs...))
	}
	return nil
}

// Count returns the number of stored entries.
func (c *CacheDisk) Count() (int, error) {
	names, err := c.entries()
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

func (c *CacheDisk) entries() ([]string, error) {
	items, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list cache directory: %w", err)
	}
	var names []string
	for _, item := range items {
		name := item.Name()
		if item.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != cacheExt {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}
