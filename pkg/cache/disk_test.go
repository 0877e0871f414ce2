package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_Deterministic(t *testing.T) {
	k1 := Key(`"Romi" CNC`, "brazil_pt", "news")
	k2 := Key(`"Romi" CNC`, "brazil_pt", "news")
	assert.Equal(t, k1, k2)
}

func TestKey_ChangesWithAnyComponent(t *testing.T) {
	base := Key("q", "brazil_pt", "news")
	assert.NotEqual(t, base, Key("q2", "brazil_pt", "news"))
	assert.NotEqual(t, base, Key("q", "spain_es", "news"))
	assert.NotEqual(t, base, Key("q", "brazil_pt", "organic"))
	// Moving a character across the separator must not collide.
	assert.NotEqual(t, Key("ab", "c", "news"), Key("a", "bc", "news"))
}

func TestDiskStore_RoundTrip(t *testing.T) {
	store := NewDiskStore(t.TempDir(), 7*24*time.Hour)

	value := []byte(`[{"title":"Romi wins contract","link":"https://example.org/a"}]`)
	require.NoError(t, store.Set("k1", value))

	got, ok := store.Get("k1")
	require.True(t, ok)
	assert.JSONEq(t, string(value), string(got))
}

func TestDiskStore_Miss(t *testing.T) {
	store := NewDiskStore(t.TempDir(), time.Hour)
	_, ok := store.Get("absent")
	assert.False(t, ok)
}

func TestDiskStore_ExpiredEntryIsAbsent(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStore(dir, 24*time.Hour)
	require.NoError(t, store.Set("k1", []byte(`[]`)))

	// Shift the clock past the TTL; the file still exists on disk.
	store.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	_, ok := store.Get("k1")
	assert.False(t, ok)
	_, err := os.Stat(filepath.Join(dir, "k1.json"))
	assert.NoError(t, err)
}

func TestDiskStore_CorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStore(dir, time.Hour)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644))

	_, ok := store.Get("bad")
	assert.False(t, ok)
}

func TestDiskStore_OverwriteReplacesWholesale(t *testing.T) {
	store := NewDiskStore(t.TempDir(), time.Hour)
	require.NoError(t, store.Set("k", []byte(`["old"]`)))
	require.NoError(t, store.Set("k", []byte(`["new"]`)))

	got, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, `["new"]`, string(got))
}
