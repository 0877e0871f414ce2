package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/config"
	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/dto"
	"github.com/ClementStand/chmsa-intel-fetcher/pkg/cache"
	"github.com/ClementStand/chmsa-intel-fetcher/pkg/logger"
	"github.com/ClementStand/chmsa-intel-fetcher/pkg/ratelimit"

	gocache "github.com/patrickmn/go-cache"
)

// serperRepository talks to the Serper.dev search API with a cache-first read
// path and a process-wide concurrency permit.
type serperRepository struct {
	client   *http.Client
	cfg      *config.Config
	logger   *logger.Logger
	store    cache.Store
	memCache *gocache.Cache
	sem      *ratelimit.Semaphore

	quotaExhausted atomic.Bool
	quotaLogOnce   sync.Once
}

// NewSerperRepository creates a SearchRepository backed by Serper.dev. The
// store is the long-TTL search-results cache.
func NewSerperRepository(cfg *config.Config, log *logger.Logger, store cache.Store) SearchRepository {
	return &serperRepository{
		client:   &http.Client{Timeout: cfg.Serper.Timeout},
		cfg:      cfg,
		logger:   log,
		store:    store,
		memCache: gocache.New(5*time.Minute, 10*time.Minute),
		sem:      ratelimit.NewSemaphore(cfg.Serper.MaxConcurrent),
	}
}

func (r *serperRepository) Search(ctx context.Context, query string, region dto.Region, kind dto.SearchKind) []dto.CandidateArticle {
	key := cache.Key(query, region.Label, string(kind))

	if v, ok := r.memCache.Get(key); ok {
		if results, ok := v.([]dto.SerperResult); ok {
			return r.toCandidates(results, region.Label)
		}
	}
	if raw, ok := r.store.Get(key); ok {
		var results []dto.SerperResult
		if err := json.Unmarshal(raw, &results); err == nil {
			r.memCache.SetDefault(key, results)
			return r.toCandidates(results, region.Label)
		}
	}

	if r.cfg.Serper.APIKey == "" {
		return nil
	}
	if r.quotaExhausted.Load() {
		return nil
	}

	results, err := r.doSearch(ctx, query, region, kind)
	if err != nil {
		r.logger.Warn("Serper search failed",
			logger.ErrorField(err),
			logger.StringField("region", region.Label),
			logger.StringField("query", query),
		)
		return nil
	}

	// A quota refusal must not be cached as an empty result.
	if results == nil && r.quotaExhausted.Load() {
		return nil
	}

	// Write-through is best effort: a cache failure never aborts the fetch.
	if raw, err := json.Marshal(results); err == nil {
		if err := r.store.Set(key, raw); err != nil {
			r.logger.Warn("Failed to write search cache", logger.ErrorField(err))
		}
	}
	r.memCache.SetDefault(key, results)

	return r.toCandidates(results, region.Label)
}

func (r *serperRepository) doSearch(ctx context.Context, query string, region dto.Region, kind dto.SearchKind) ([]dto.SerperResult, error) {
	if err := r.sem.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("failed to acquire search permit: %w", err)
	}
	defer r.sem.Release()

	payload := dto.SerperSearchRequest{
		Q:   query,
		GL:  region.GL,
		HL:  region.HL,
		Num: r.cfg.Serper.NumResults,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s", r.cfg.Serper.BaseURL, kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("X-API-KEY", r.cfg.Serper.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call search API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	// Quota exhaustion is terminal for the provider for the rest of the run.
	if (resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusForbidden) &&
		strings.Contains(strings.ToLower(string(respBody)), "credits") {
		r.quotaExhausted.Store(true)
		r.quotaLogOnce.Do(func() {
			r.logger.Error("Serper credits exhausted, disabling provider for this run")
		})
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed dto.SerperSearchResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	if kind == dto.SearchKindNews {
		return parsed.News, nil
	}
	return parsed.Organic, nil
}

func (r *serperRepository) toCandidates(results []dto.SerperResult, regionLabel string) []dto.CandidateArticle {
	candidates := make([]dto.CandidateArticle, 0, len(results))
	for _, res := range results {
		candidates = append(candidates, dto.CandidateArticle{
			Title:        res.Title,
			Link:         res.Link,
			Snippet:      res.Snippet,
			Date:         res.Date,
			SearchRegion: regionLabel,
		})
	}
	return candidates
}
