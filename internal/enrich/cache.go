package enrich

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Cache is the lookup cache persisted at data/meta_cache.json, keyed by
// NormKey. A key mapping to empty metadata records a lookup that found
// nothing, so it is not retried on the next run.
type Cache struct {
	path    string
	entries map[string]Metadata
}

// LoadCache reads the cache file. Missing or corrupt files start empty.
func LoadCache(path string) *Cache {
	c := &Cache{
		path:    path,
		entries: make(map[string]Metadata),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		c.entries = make(map[string]Metadata)
	}
	return c
}

// Get returns the cached metadata for key.
func (c *Cache) Get(key string) (Metadata, bool) {
	m, ok := c.entries[key]
	return m, ok
}

// Put stores metadata under key.
func (c *Cache) Put(key string, m Metadata) {
	c.entries[key] = m
}

// Len returns the number of cached keys.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Save writes the cache file, creating parent directories as needed.
func (c *Cache) Save() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}
