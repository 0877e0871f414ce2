package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ClementStand/chmsa-intel-fetcher/internal/entity"
	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/config"
	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/dto"
	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/repository"
	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/status"
	"github.com/ClementStand/chmsa-intel-fetcher/pkg/logger"
	"github.com/ClementStand/chmsa-intel-fetcher/pkg/telegram"
	"github.com/ClementStand/chmsa-intel-fetcher/pkg/utils"
)

// waveSize bounds how many competitors run concurrently in one wave.
const waveSize = 5

// RunOptions narrow a refresh run from the command line.
type RunOptions struct {
	Days           int
	CompetitorName string
	Regions        []string
	CleanStart     bool
	Limit          int
}

// FetcherService runs the full intelligence refresh: roster, fan-out,
// extraction, gate, progress.
type FetcherService struct {
	cfg            *config.Config
	logger         *logger.Logger
	aggregator     *Aggregator
	extractor      *Extractor
	gate           *Gate
	content        repository.ArticleContentRepository
	competitorRepo repository.CompetitorRepository
	newsRepo       repository.CompetitorNewsRepository
	reporter       *status.Reporter
	notifier       telegram.Notifier
}

// NewFetcherService creates a FetcherService. content may be nil when snippet
// enrichment is disabled.
func NewFetcherService(
	cfg *config.Config,
	log *logger.Logger,
	aggregator *Aggregator,
	extractor *Extractor,
	gate *Gate,
	content repository.ArticleContentRepository,
	competitorRepo repository.CompetitorRepository,
	newsRepo repository.CompetitorNewsRepository,
	reporter *status.Reporter,
	notifier telegram.Notifier,
) *FetcherService {
	return &FetcherService{
		cfg:            cfg,
		logger:         log,
		aggregator:     aggregator,
		extractor:      extractor,
		gate:           gate,
		content:        content,
		competitorRepo: competitorRepo,
		newsRepo:       newsRepo,
		reporter:       reporter,
		notifier:       notifier,
	}
}

// Run executes one refresh. The returned count is the number of items saved.
// Progress is finalized even on failure so readers of the status file never
// see a run stuck in running state.
func (s *FetcherService) Run(ctx context.Context, opts RunOptions) (int, error) {
	var prog runProgress
	saved, err := s.run(ctx, opts, &prog)
	if err != nil {
		if werr := s.reporter.Report(status.StateError, "", prog.processed, prog.total, err); werr != nil {
			s.logger.Warn("Failed to finalize status file", logger.ErrorField(werr))
		}
		return saved, err
	}
	return saved, nil
}

type runProgress struct {
	processed int
	total     int
}

func (s *FetcherService) run(ctx context.Context, opts RunOptions, prog *runProgress) (int, error) {
	if opts.CleanStart {
		if err := s.newsRepo.DeleteAll(ctx); err != nil {
			return 0, fmt.Errorf("failed to clear news table: %w", err)
		}
		s.logger.Info("Cleared news table for clean start")
	}

	searchDays, err := s.resolveSearchDays(ctx, opts)
	if err != nil {
		return 0, err
	}

	regions := ResolveRegions(opts.Regions)
	if len(regions) == 0 {
		return 0, fmt.Errorf("no known regions in %v", opts.Regions)
	}

	existingURLs, err := s.newsRepo.AllSourceURLs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load existing URLs: %w", err)
	}

	competitors, err := s.competitorRepo.GetActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load competitors: %w", err)
	}
	if opts.CompetitorName != "" {
		needle := strings.ToLower(opts.CompetitorName)
		filtered := competitors[:0]
		for _, c := range competitors {
			if strings.Contains(strings.ToLower(c.Name), needle) {
				filtered = append(filtered, c)
			}
		}
		competitors = filtered
	}
	if opts.Limit > 0 && opts.Limit < len(competitors) {
		competitors = competitors[:opts.Limit]
	}

	total := len(competitors)
	prog.total = total
	s.logger.Info("Starting refresh",
		logger.IntField("competitors", total),
		logger.IntField("search_days", searchDays),
		logger.IntField("regions", len(regions)),
	)
	if err := s.reporter.Report(status.StateRunning, "", 0, total, nil); err != nil {
		return 0, fmt.Errorf("failed to write status file: %w", err)
	}

	totalSaved := 0
	processed := 0
	for waveStart := 0; waveStart < total; waveStart += waveSize {
		waveEnd := waveStart + waveSize
		if waveEnd > total {
			waveEnd = total
		}
		wave := competitors[waveStart:waveEnd]

		for _, c := range wave {
			if err := s.reporter.Report(status.StateRunning, c.Name, processed, total, nil); err != nil {
				s.logger.Warn("Failed to write status file", logger.ErrorField(err))
			}
		}

		counts := make([]int, len(wave))
		var wg sync.WaitGroup
		for i, competitor := range wave {
			i, competitor := i, competitor
			wg.Add(1)
			utils.GoSafe(s.logger, func() {
				defer wg.Done()
				counts[i] = s.processCompetitor(ctx, competitor, regions, existingURLs, searchDays)
			})
		}
		wg.Wait()

		for i, competitor := range wave {
			totalSaved += counts[i]
			processed++
			prog.processed = processed
			if err := s.reporter.Report(status.StateRunning, competitor.Name, processed, total, nil); err != nil {
				s.logger.Warn("Failed to write status file", logger.ErrorField(err))
			}
		}

		if waveEnd < total {
			if !utils.ShouldContinue(ctx, s.logger) {
				return totalSaved, ctx.Err()
			}
			utils.SleepJitter(ctx, 3*time.Second, 5*time.Second)
		}
	}

	if err := s.reporter.Report(status.StateCompleted, "", total, total, nil); err != nil {
		s.logger.Warn("Failed to finalize status file", logger.ErrorField(err))
	}
	s.logger.Info("Refresh complete", logger.IntField("saved", totalSaved))
	s.notify(fmt.Sprintf("Competitor intelligence refresh complete: %d new items across %d competitors.", totalSaved, total))
	return totalSaved, nil
}

// resolveSearchDays picks the search window: the explicit flag, else the gap
// since the last stored extraction capped at two weeks, else 30 days for a
// first or clean run.
func (s *FetcherService) resolveSearchDays(ctx context.Context, opts RunOptions) (int, error) {
	if opts.Days > 0 {
		return opts.Days, nil
	}
	if opts.CleanStart {
		return 30, nil
	}
	lastFetch, err := s.newsRepo.LastExtractedAt(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read last fetch date: %w", err)
	}
	if lastFetch == nil {
		return 30, nil
	}
	days := int(time.Since(*lastFetch).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	if days > 14 {
		days = 14
	}
	return days, nil
}

// processCompetitor runs one competitor end to end. Faults are absorbed: a
// competitor that fails contributes zero items and the run continues.
func (s *FetcherService) processCompetitor(ctx context.Context, competitor entity.Competitor, regions []dto.Region, existingURLs map[string]struct{}, searchDays int) int {
	articles := s.aggregator.Collect(ctx, competitor, regions, searchDays)
	if len(articles) == 0 {
		s.logger.Info("No articles found", logger.StringField("competitor", competitor.Name))
		return 0
	}

	fresh := articles[:0]
	for _, article := range articles {
		if _, known := existingURLs[article.Link]; !known {
			fresh = append(fresh, article)
		}
	}
	if len(fresh) == 0 {
		s.logger.Info("All articles already known", logger.StringField("competitor", competitor.Name))
		return 0
	}
	s.enrichSnippets(ctx, fresh)

	items, noRelevant := s.extractor.Extract(ctx, competitor.Name, fresh, searchDays)
	if noRelevant {
		s.logger.Info("No relevant news reported", logger.StringField("competitor", competitor.Name))
		return 0
	}
	if len(items) == 0 {
		return 0
	}

	effectiveDays := EffectiveDaysBack(competitor.Industry, searchDays)
	saved := 0
	for _, item := range items {
		result, err := s.gate.Save(ctx, competitor.ID, item, effectiveDays)
		if err != nil {
			s.logger.Error("Failed to save news item",
				logger.ErrorField(err),
				logger.StringField("competitor", competitor.Name),
				logger.StringField("title", item.Title),
			)
			continue
		}
		if result == StatusSaved {
			saved++
		} else {
			s.logger.Debug("Item rejected",
				logger.StringField("competitor", competitor.Name),
				logger.StringField("reason", result),
			)
		}
	}
	s.logger.Info("Competitor processed",
		logger.StringField("competitor", competitor.Name),
		logger.IntField("candidates", len(fresh)),
		logger.IntField("extracted", len(items)),
		logger.IntField("saved", saved),
	)
	return saved
}

// enrichSnippets fetches a readable excerpt for candidates whose snippet is
// too thin for useful extraction.
func (s *FetcherService) enrichSnippets(ctx context.Context, articles []dto.CandidateArticle) {
	if s.content == nil || !s.cfg.Fetcher.ContentFetch {
		return
	}
	for i := range articles {
		if len(articles[i].Snippet) >= s.cfg.Fetcher.MinSnippetLength {
			continue
		}
		excerpt, err := s.content.FetchExcerpt(ctx, articles[i].Link, s.cfg.Fetcher.MaxContentBodySize)
		if err != nil {
			s.logger.Debug("Failed to fetch article excerpt",
				logger.ErrorField(err),
				logger.StringField("url", articles[i].Link),
			)
			continue
		}
		if len(excerpt) > len(articles[i].Snippet) {
			articles[i].Snippet = excerpt
		}
	}
}

func (s *FetcherService) notify(message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendMessage(message); err != nil {
		s.logger.Warn("Failed to send notification", logger.ErrorField(err))
	}
}
