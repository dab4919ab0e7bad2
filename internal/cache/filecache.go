package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const cacheFileName = "cache.json"

// FileCache implements Cache as a single JSON file, persisted across
// invocations. Expired entries are dropped on load and on access. Writes are
// best effort; a cache that cannot be persisted degrades to per-run only.
// Not safe for concurrent use; the tool runs one lookup per process.
type FileCache struct {
	path    string
	entries map[string]fileEntry
}

type fileEntry struct {
	Value     json.RawMessage `json:"value"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

// NewFileCache opens (or creates) the cache file. dir defaults to
// os.UserCacheDir()/weather-cli when empty. A corrupt or unreadable cache
// file is discarded, not an error.
func NewFileCache(dir string) (*FileCache, error) {
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("resolve user cache dir: %w", err)
		}
		dir = filepath.Join(base, "weather-cli")
	}
	c := &FileCache{
		path:    filepath.Join(dir, cacheFileName),
		entries: make(map[string]fileEntry),
	}
	c.load()
	return c, nil
}

// Path returns the cache file location.
func (c *FileCache) Path() string {
	return c.path
}

func (c *FileCache) load() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return
	}
	var entries map[string]fileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return
	}
	now := time.Now()
	for k, e := range entries {
		if now.Before(e.ExpiresAt) {
			c.entries[k] = e
		}
	}
}

// Get returns the cached value if present and not expired.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if ctx.Err() != nil {
		return nil, false, ctx.Err()
	}
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(e.ExpiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return e.Value, true, nil
}

// Set stores the value with the given TTL and persists the cache file.
func (c *FileCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if ttl <= 0 {
		return fmt.Errorf("cache: ttl must be positive")
	}
	c.entries[key] = fileEntry{
		Value:     json.RawMessage(value),
		ExpiresAt: time.Now().Add(ttl),
	}
	return c.save()
}

func (c *FileCache) save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("cache: create dir: %w", err)
	}
	data, err := json.Marshal(c.entries)
	if err != nil {
		return fmt.Errorf("cache: encode: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("cache: write: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("cache: replace: %w", err)
	}
	return nil
}
