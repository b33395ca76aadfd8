package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DiskCache keeps fetched pages on disk, one JSON file per URL named by the
// SHA-256 of the URL.
type DiskCache struct {
	dir string
	ttl time.Duration
}

type cacheEntry struct {
	URL       string    `json:"url"`
	Body      []byte    `json:"body"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewDiskCache(dir string, ttl time.Duration) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory %s: %w", dir, err)
	}
	return &DiskCache{dir: dir, ttl: ttl}, nil
}

// Get returns the cached page for url if present and not expired.
func (c *DiskCache) Get(url string) ([]byte, bool) {
	path := c.pathFor(url)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false
	}
	return entry.Body, true
}

func (c *DiskCache) Set(url string, body []byte) error {
	data, err := json.Marshal(cacheEntry{URL: url, Body: body, ExpiresAt: time.Now().Add(c.ttl)})
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	path := c.pathFor(url)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write cache file %s: %w", path, err)
	}
	return nil
}

func (c *DiskCache) pathFor(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}
