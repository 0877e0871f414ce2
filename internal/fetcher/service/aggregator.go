package service

import (
	"context"
	"sync"

	"github.com/ClementStand/chmsa-intel-fetcher/internal/entity"
	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/dto"
	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/repository"
	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/urlfilter"
	"github.com/ClementStand/chmsa-intel-fetcher/pkg/logger"
	"github.com/ClementStand/chmsa-intel-fetcher/pkg/utils"
)

// Aggregator fans one competitor out across every search source and merges
// the results into a deduplicated candidate list.
type Aggregator struct {
	search   repository.SearchRepository
	grounded repository.GroundedSearchRepository
	logger   *logger.Logger
}

// NewAggregator creates an Aggregator. grounded may be nil when no grounded
// search provider is configured.
func NewAggregator(search repository.SearchRepository, grounded repository.GroundedSearchRepository, log *logger.Logger) *Aggregator {
	return &Aggregator{
		search:   search,
		grounded: grounded,
		logger:   log,
	}
}

type searchTask struct {
	region dto.Region
	query  string
}

// Collect runs every (query, region) keyword search plus the grounded and
// deep grounded sweeps concurrently, then merges with first-seen-wins URL
// dedupe. Keyword results come first in merge order so their richer snippets
// win over grounded duplicates.
func (a *Aggregator) Collect(ctx context.Context, competitor entity.Competitor, regions []dto.Region, daysBack int) []dto.CandidateArticle {
	searchName := utils.NormalizeSearchName(competitor.Name)
	queries := BuildQueries(searchName)

	tasks := make([]searchTask, 0, len(regions)*len(queries)+len(queries))
	for _, region := range regions {
		for _, query := range queries {
			tasks = append(tasks, searchTask{region: region, query: query})
		}
	}
	if native := NativeRegion(competitor.Headquarters); native != nil {
		requested := false
		for _, region := range regions {
			if region.Label == native.Label {
				requested = true
				break
			}
		}
		if !requested {
			for _, query := range queries {
				tasks = append(tasks, searchTask{region: *native, query: query})
			}
		}
	}

	// Results are gathered per slot so the merge order is stable regardless
	// of goroutine completion order.
	keywordResults := make([][]dto.CandidateArticle, len(tasks))
	var groundedResults, deepResults []dto.CandidateArticle

	var wg sync.WaitGroup
	for i, task := range tasks {
		i, task := i, task
		wg.Add(1)
		utils.GoSafe(a.logger, func() {
			defer wg.Done()
			keywordResults[i] = a.search.Search(ctx, task.query, task.region, dto.SearchKindNews)
		})
	}
	if a.grounded != nil {
		wg.Add(1)
		utils.GoSafe(a.logger, func() {
			defer wg.Done()
			groundedResults = a.grounded.SearchGrounded(ctx, competitor.Name, daysBack)
		})
		if competitor.Website != "" {
			wg.Add(1)
			utils.GoSafe(a.logger, func() {
				defer wg.Done()
				deepResults = a.grounded.SearchGroundedDeep(ctx, competitor.Name, competitor.Website, daysBack)
			})
		}
	}
	wg.Wait()

	seen := make(map[string]struct{})
	var merged []dto.CandidateArticle
	filtered := 0

	add := func(articles []dto.CandidateArticle) {
		for _, article := range articles {
			if article.Link == "" {
				continue
			}
			if _, ok := seen[article.Link]; ok {
				continue
			}
			seen[article.Link] = struct{}{}
			if !urlfilter.IsArticle(article.Link) {
				filtered++
				continue
			}
			merged = append(merged, article)
		}
	}
	for _, results := range keywordResults {
		add(results)
	}
	add(groundedResults)
	add(deepResults)

	a.logger.Info("Search fan-out finished",
		logger.StringField("competitor", searchName),
		logger.IntField("tasks", len(tasks)),
		logger.IntField("candidates", len(merged)),
		logger.IntField("filtered", filtered),
	)
	return merged
}
