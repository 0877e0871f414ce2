package repository

import (
	"context"
	"time"

	"github.com/ClementStand/chmsa-intel-fetcher/internal/entity"
	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/dto"
)

// SearchRepository is a keyword/region search provider. Faults are local to a
// call: transport failures and quota exhaustion yield empty results, never
// errors, so the pipeline stays correct with a provider returning nothing.
type SearchRepository interface {
	Search(ctx context.Context, query string, region dto.Region, kind dto.SearchKind) []dto.CandidateArticle
}

// GroundedSearchRepository is a grounded natural-language search provider
// that maps answer lines back to cited sources. Same fault contract as
// SearchRepository.
type GroundedSearchRepository interface {
	SearchGrounded(ctx context.Context, competitorName string, daysBack int) []dto.CandidateArticle
	SearchGroundedDeep(ctx context.Context, competitorName, website string, daysBack int) []dto.CandidateArticle
}

// ExtractionRepository turns one rendered batch prompt into structured news
// items. Parse failures are returned as errors so the batcher can retry.
type ExtractionRepository interface {
	Extract(ctx context.Context, prompt string) (*dto.ExtractionResult, error)
}

// ArticleContentRepository fetches a readable text excerpt from an article
// page, used to enrich thin search snippets before extraction.
type ArticleContentRepository interface {
	FetchExcerpt(ctx context.Context, url string, maxLen int) (string, error)
}

// CompetitorRepository provides read-only access to the competitor roster.
type CompetitorRepository interface {
	GetActive(ctx context.Context) ([]entity.Competitor, error)
}

// CompetitorNewsRepository is the write path to the durable store.
type CompetitorNewsRepository interface {
	AllSourceURLs(ctx context.Context) (map[string]struct{}, error)
	ExistsBySourceURL(ctx context.Context, sourceURL string) (bool, error)
	ExistsByTitle(ctx context.Context, competitorID, title string) (bool, error)
	CreateIgnoreConflict(ctx context.Context, news *entity.CompetitorNews) error
	DeleteAll(ctx context.Context) error
	LastExtractedAt(ctx context.Context) (*time.Time, error)
}
