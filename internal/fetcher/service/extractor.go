package service

import (
	"context"
	"time"

	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/dto"
	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/repository"
	"github.com/ClementStand/chmsa-intel-fetcher/pkg/logger"
)

const (
	extractionBatchSize = 12
	extractionAttempts  = 3
	interBatchDelay     = 500 * time.Millisecond
	retryDelay          = time.Second
)

// Extractor turns candidate articles into structured news items through the
// configured extraction provider, batch by batch.
type Extractor struct {
	extraction repository.ExtractionRepository
	logger     *logger.Logger
	now        func() time.Time
}

// NewExtractor creates a new Extractor.
func NewExtractor(extraction repository.ExtractionRepository, log *logger.Logger) *Extractor {
	return &Extractor{
		extraction: extraction,
		logger:     log,
		now:        time.Now,
	}
}

// Extract processes articles in fixed-size batches. A batch whose attempts
// are all spent is dropped, not fatal. The returned items carry the search
// region of the candidate whose URL they cite. The second return is true when
// the provider affirmatively reported that no batch held relevant news, which
// is distinct from batches failing or items being filtered out later.
func (e *Extractor) Extract(ctx context.Context, competitorName string, articles []dto.CandidateArticle, daysBack int) ([]dto.NewsItem, bool) {
	var allItems []dto.NewsItem
	noRelevantBatches := 0

	totalBatches := (len(articles) + extractionBatchSize - 1) / extractionBatchSize
	for start := 0; start < len(articles); start += extractionBatchSize {
		end := start + extractionBatchSize
		if end > len(articles) {
			end = len(articles)
		}
		batch := articles[start:end]
		batchNum := start/extractionBatchSize + 1

		items, noRelevant := e.extractBatch(ctx, competitorName, batch, daysBack)
		if noRelevant {
			noRelevantBatches++
		}
		if len(items) > 0 {
			allItems = append(allItems, items...)
		}
		e.logger.Debug("Extraction batch finished",
			logger.StringField("competitor", competitorName),
			logger.IntField("batch", batchNum),
			logger.IntField("total_batches", totalBatches),
			logger.IntField("items", len(items)),
		)

		if end < len(articles) {
			select {
			case <-ctx.Done():
				return allItems, false
			case <-time.After(interBatchDelay):
			}
		}
	}
	return allItems, totalBatches > 0 && noRelevantBatches == totalBatches && len(allItems) == 0
}

func (e *Extractor) extractBatch(ctx context.Context, competitorName string, batch []dto.CandidateArticle, daysBack int) ([]dto.NewsItem, bool) {
	prompt := repository.BuildExtractionPrompt(competitorName, batch, e.now(), daysBack)

	regionByURL := make(map[string]string, len(batch))
	for _, article := range batch {
		regionByURL[article.Link] = article.SearchRegion
	}

	for attempt := 1; attempt <= extractionAttempts; attempt++ {
		result, err := e.extraction.Extract(ctx, prompt)
		if err != nil {
			e.logger.Warn("Extraction attempt failed",
				logger.ErrorField(err),
				logger.StringField("competitor", competitorName),
				logger.IntField("attempt", attempt),
			)
			if attempt < extractionAttempts {
				select {
				case <-ctx.Done():
					return nil, false
				case <-time.After(retryDelay):
				}
				continue
			}
			return nil, false
		}

		if result == nil || result.NoRelevantNews {
			return nil, result != nil && result.NoRelevantNews
		}
		items := result.NewsItems
		for i := range items {
			if region, ok := regionByURL[items[i].SourceURL]; ok {
				items[i].SearchRegion = region
			}
		}
		return items, false
	}
	return nil, false
}
