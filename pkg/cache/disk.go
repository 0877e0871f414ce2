package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DiskStore persists cache entries as one JSON file per key. Entries are
// immutable once written and expire at read time.
type DiskStore struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

type diskEntry struct {
	CachedAt time.Time       `json:"cached_at"`
	Data     json.RawMessage `json:"data"`
}

// NewDiskStore creates a disk store rooted at dir with the given TTL.
func NewDiskStore(dir string, ttl time.Duration) *DiskStore {
	return &DiskStore{dir: dir, ttl: ttl, now: time.Now}
}

// Get returns the cached value if it exists and is younger than the TTL.
// Unreadable or corrupt entries are treated as misses.
func (s *DiskStore) Get(key string) ([]byte, bool) {
	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}

	var entry diskEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false
	}

	if s.now().Sub(entry.CachedAt) >= s.ttl {
		return nil, false
	}

	return entry.Data, true
}

// Set writes the value wholesale under key.
func (s *DiskStore) Set(key string, value []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	raw, err := json.Marshal(diskEntry{CachedAt: s.now(), Data: value})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := os.WriteFile(s.path(key), raw, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

func (s *DiskStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
