package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Store is a TTL-bounded key/value store for serialized provider responses.
// Get returns (nil, false) for missing, expired, or unreadable entries; the
// read path never fails hard. Set overwrites the entry wholesale.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
}

// Key derives a deterministic cache key from the exact query string, region
// label, and search kind. Changing any of the three changes the key.
func Key(query, region, kind string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s", query, region, kind)))
	return hex.EncodeToString(sum[:])
}
