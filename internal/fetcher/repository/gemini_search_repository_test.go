package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/config"
	"github.com/ClementStand/chmsa-intel-fetcher/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"google.golang.org/genai"
)

type memStore struct {
	data map[string][]byte
	sets int
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(key string) ([]byte, bool) {
	raw, ok := m.data[key]
	return raw, ok
}

func (m *memStore) Set(key string, value []byte) error {
	m.data[key] = value
	m.sets++
	return nil
}

func newTestGeminiRepository(t *testing.T, handler http.HandlerFunc, store *memStore) GroundedSearchRepository {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  srv.Client(),
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL},
	})
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Gemini.Model = "gemini-2.0-flash"
	cfg.Gemini.MaxRequestPerMinute = 600

	return NewGeminiSearchRepository(cfg, logger.NewNop(), store, client)
}

func TestSearchGrounded_CachesEmptySuccess(t *testing.T) {
	var calls int
	handler := func(w http.ResponseWriter, req *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		// A successful answer with no bulleted, cited lines.
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"No recent news found for this competitor."}]}}]}`))
	}
	store := newMemStore()
	repo := newTestGeminiRepository(t, handler, store)

	first := repo.SearchGrounded(context.Background(), "Okuma", 7)
	assert.Empty(t, first)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, store.sets)

	second := repo.SearchGrounded(context.Background(), "Okuma", 7)
	assert.Empty(t, second)
	assert.Equal(t, 1, calls, "second lookup should be served from cache")
}

func TestSearchGrounded_FailedCallIsNotCached(t *testing.T) {
	handler := func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, `{"error":{"code":429,"message":"rate limited"}}`, http.StatusTooManyRequests)
	}
	store := newMemStore()
	repo := newTestGeminiRepository(t, handler, store)

	articles := repo.SearchGrounded(context.Background(), "Okuma", 7)
	assert.Empty(t, articles)
	assert.Zero(t, store.sets, "a failed call must not poison the cache")
}

func TestSearchGrounded_NilClientReturnsNothing(t *testing.T) {
	cfg := &config.Config{}
	cfg.Gemini.MaxRequestPerMinute = 600
	repo := NewGeminiSearchRepository(cfg, logger.NewNop(), newMemStore(), nil)

	assert.Nil(t, repo.SearchGrounded(context.Background(), "Okuma", 7))
	assert.Nil(t, repo.SearchGroundedDeep(context.Background(), "Okuma", "https://okuma.com", 7))
}
