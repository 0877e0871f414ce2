package service

import (
	"context"
	"sync"
	"testing"

	"github.com/ClementStand/chmsa-intel-fetcher/internal/entity"
	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/dto"
	"github.com/ClementStand/chmsa-intel-fetcher/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearchRepo struct {
	mu      sync.Mutex
	calls   []string
	results map[string][]dto.CandidateArticle
	always  []dto.CandidateArticle
}

func (f *fakeSearchRepo) Search(ctx context.Context, query string, region dto.Region, kind dto.SearchKind) []dto.CandidateArticle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, region.Label)
	if f.results != nil {
		return f.results[region.Label]
	}
	return f.always
}

type fakeGroundedRepo struct {
	grounded []dto.CandidateArticle
	deep     []dto.CandidateArticle

	mu        sync.Mutex
	deepCalls int
}

func (f *fakeGroundedRepo) SearchGrounded(ctx context.Context, competitorName string, daysBack int) []dto.CandidateArticle {
	return f.grounded
}

func (f *fakeGroundedRepo) SearchGroundedDeep(ctx context.Context, competitorName, website string, daysBack int) []dto.CandidateArticle {
	f.mu.Lock()
	f.deepCalls++
	f.mu.Unlock()
	return f.deep
}

func TestAggregator_DeduplicatesAcrossSources(t *testing.T) {
	shared := dto.CandidateArticle{
		Title:        "Romi opens new plant",
		Link:         "https://news.example.org/romi-plant",
		Snippet:      "Romi announced a new plant in Santa Barbara.",
		SearchRegion: "brazil_pt",
	}
	search := &fakeSearchRepo{always: []dto.CandidateArticle{shared}}
	grounded := &fakeGroundedRepo{
		grounded: []dto.CandidateArticle{
			{Title: "Romi opens new plant", Link: "https://news.example.org/romi-plant", SearchRegion: dto.GroundedRegionLabel},
			{Title: "Romi quarterly results", Link: "https://news.example.org/romi-q2", SearchRegion: dto.GroundedRegionLabel},
		},
	}
	agg := NewAggregator(search, grounded, logger.NewNop())

	competitor := entity.Competitor{Name: "Indústrias Romi", Headquarters: "Brazil"}
	articles := agg.Collect(context.Background(), competitor, ResolveRegions([]string{"brazil"}), 7)

	require.Len(t, articles, 2)
	// Keyword results merge before grounded ones, so the keyword snippet
	// survives for the shared URL.
	assert.Equal(t, "brazil_pt", articles[0].SearchRegion)
	assert.Equal(t, shared.Snippet, articles[0].Snippet)
	assert.Equal(t, dto.GroundedRegionLabel, articles[1].SearchRegion)
}

func TestAggregator_NativeRegionAddsTasks(t *testing.T) {
	search := &fakeSearchRepo{}
	agg := NewAggregator(search, nil, logger.NewNop())

	competitor := entity.Competitor{Name: "Hermle", Headquarters: "Gosheim, Germany"}
	agg.Collect(context.Background(), competitor, ResolveRegions([]string{"global"}), 7)

	native := 0
	for _, label := range search.calls {
		if label == "germany_de" {
			native++
		}
	}
	assert.Equal(t, len(queryTemplates), native)
	assert.Len(t, search.calls, 2*len(queryTemplates))
}

func TestAggregator_NativeRegionAlreadyRequested(t *testing.T) {
	search := &fakeSearchRepo{}
	agg := NewAggregator(search, nil, logger.NewNop())

	// Brazil's native region is covered by the requested set, so no extra
	// native pass runs.
	competitor := entity.Competitor{Name: "Indústrias Romi", Headquarters: "Santa Bárbara d'Oeste, Brazil"}
	agg.Collect(context.Background(), competitor, ResolveRegions([]string{"global", "brazil"}), 7)

	assert.Len(t, search.calls, 2*len(queryTemplates))
}

func TestAggregator_EnglishHQSkipsNativePass(t *testing.T) {
	search := &fakeSearchRepo{}
	agg := NewAggregator(search, nil, logger.NewNop())

	competitor := entity.Competitor{Name: "Haas Automation", Headquarters: "Oxnard, USA"}
	agg.Collect(context.Background(), competitor, ResolveRegions([]string{"global"}), 7)

	assert.Len(t, search.calls, len(queryTemplates))
}

func TestAggregator_BlockedURLsFiltered(t *testing.T) {
	search := &fakeSearchRepo{always: []dto.CandidateArticle{
		{Title: "Profile", Link: "https://www.linkedin.com/company/okuma"},
		{Title: "Real news", Link: "https://www.mmsonline.com/articles/okuma-expands"},
	}}
	agg := NewAggregator(search, nil, logger.NewNop())

	articles := agg.Collect(context.Background(), entity.Competitor{Name: "Okuma"}, ResolveRegions([]string{"global"}), 7)

	require.Len(t, articles, 1)
	assert.Equal(t, "https://www.mmsonline.com/articles/okuma-expands", articles[0].Link)
}

func TestAggregator_NoDeepSearchWithoutWebsite(t *testing.T) {
	search := &fakeSearchRepo{}
	grounded := &fakeGroundedRepo{}
	agg := NewAggregator(search, grounded, logger.NewNop())

	agg.Collect(context.Background(), entity.Competitor{Name: "Mazak"}, ResolveRegions([]string{"global"}), 7)
	assert.Equal(t, 0, grounded.deepCalls)

	agg.Collect(context.Background(), entity.Competitor{Name: "Mazak", Website: "https://www.mazak.com"}, ResolveRegions([]string{"global"}), 7)
	assert.Equal(t, 1, grounded.deepCalls)
}
