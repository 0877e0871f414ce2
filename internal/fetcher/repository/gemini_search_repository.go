package repository

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/config"
	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/dto"
	"github.com/ClementStand/chmsa-intel-fetcher/pkg/cache"
	"github.com/ClementStand/chmsa-intel-fetcher/pkg/logger"
	"github.com/ClementStand/chmsa-intel-fetcher/pkg/utils"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// geminiSearchRepository performs grounded search through Gemini with the
// Google Search tool enabled, mapping answer lines back to cited sources.
type geminiSearchRepository struct {
	cfg     *config.Config
	logger  *logger.Logger
	store   cache.Store
	client  *genai.Client
	limiter *rate.Limiter
}

// NewGeminiSearchRepository creates a GroundedSearchRepository. The store is
// the short-TTL grounded-search cache.
func NewGeminiSearchRepository(cfg *config.Config, log *logger.Logger, store cache.Store, client *genai.Client) GroundedSearchRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.Gemini.MaxRequestPerMinute)
	return &geminiSearchRepository{
		cfg:     cfg,
		logger:  log,
		store:   store,
		client:  client,
		limiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}
}

func (r *geminiSearchRepository) SearchGrounded(ctx context.Context, competitorName string, daysBack int) []dto.CandidateArticle {
	if r.client == nil {
		return nil
	}

	searchName := utils.NormalizeSearchName(competitorName)
	key := cache.Key(strings.ToLower(searchName), "grounded", "gemini")

	if raw, ok := r.store.Get(key); ok {
		var cached []dto.CandidateArticle
		if err := json.Unmarshal(raw, &cached); err == nil {
			r.logger.Debug("Grounded search cache hit",
				logger.StringField("competitor", searchName),
				logger.IntField("articles", len(cached)),
			)
			return cached
		}
	}

	// Jitter before each grounded call to avoid bursty load on a
	// rate-limited service.
	utils.SleepJitter(ctx, time.Second, 3*time.Second)

	prompt := BuildGroundedSearchPrompt(searchName, daysBack)
	articles, ok := r.generateGrounded(ctx, searchName, prompt)
	if !ok {
		return nil
	}

	// An answer with no verifiable citations is still a successful result:
	// cache it so quiet competitors do not re-pay the call every run.
	if articles == nil {
		articles = []dto.CandidateArticle{}
	}
	if raw, err := json.Marshal(articles); err == nil {
		if err := r.store.Set(key, raw); err != nil {
			r.logger.Warn("Failed to write grounded cache", logger.ErrorField(err))
		}
	}

	r.logger.Info("Grounded search finished",
		logger.StringField("competitor", searchName),
		logger.IntField("articles", len(articles)),
	)
	return articles
}

func (r *geminiSearchRepository) SearchGroundedDeep(ctx context.Context, competitorName, website string, daysBack int) []dto.CandidateArticle {
	if r.client == nil || website == "" {
		return nil
	}

	searchName := utils.NormalizeSearchName(competitorName)
	domain := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(website, "https://"), "http://"), "/")

	utils.SleepJitter(ctx, 1500*time.Millisecond, 3*time.Second)

	prompt := BuildDeepSearchPrompt(searchName, domain, daysBack)
	articles, _ := r.generateGrounded(ctx, searchName, prompt)
	if len(articles) > 0 {
		r.logger.Info("Deep grounded search finished",
			logger.StringField("competitor", searchName),
			logger.IntField("articles", len(articles)),
		)
	}
	return articles
}

// generateGrounded issues one grounded generation call and maps the answer to
// verified citations. The second return distinguishes a failed call from a
// successful one that yielded no citable articles; grounded search stays a
// best-effort contributor to the fan-out either way.
func (r *geminiSearchRepository) generateGrounded(ctx context.Context, searchName, prompt string) ([]dto.CandidateArticle, bool) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, false
	}

	cfg := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}
	resp, err := r.client.Models.GenerateContent(ctx, r.cfg.Gemini.Model, genai.Text(prompt), cfg)
	if err != nil {
		if strings.Contains(err.Error(), "429") {
			r.logger.Warn("Grounded search rate limited, skipping", logger.StringField("competitor", searchName))
		} else {
			r.logger.Warn("Grounded search failed", logger.ErrorField(err), logger.StringField("competitor", searchName))
		}
		return nil, false
	}

	answer, chunks, supports := flattenGroundingResponse(resp)
	if answer == "" {
		return nil, true
	}
	return MapAnswerToCitations(answer, chunks, supports), true
}

// flattenGroundingResponse converts the SDK response into the transport-free
// shapes the citation mapper works on.
func flattenGroundingResponse(resp *genai.GenerateContentResponse) (string, []CitedSource, []SupportSpan) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", nil, nil
	}
	candidate := resp.Candidates[0]

	var answer string
	if candidate.Content != nil && len(candidate.Content.Parts) > 0 {
		answer = candidate.Content.Parts[0].Text
	}

	meta := candidate.GroundingMetadata
	if meta == nil {
		return answer, nil, nil
	}

	chunks := make([]CitedSource, 0, len(meta.GroundingChunks))
	for _, chunk := range meta.GroundingChunks {
		var src CitedSource
		if chunk.Web != nil {
			src = CitedSource{URI: chunk.Web.URI, Title: chunk.Web.Title}
		}
		chunks = append(chunks, src)
	}

	supports := make([]SupportSpan, 0, len(meta.GroundingSupports))
	for _, support := range meta.GroundingSupports {
		// Segment or its indices can be absent on some responses.
		if support.Segment == nil {
			continue
		}
		span := SupportSpan{
			Start: int(support.Segment.StartIndex),
			End:   int(support.Segment.EndIndex),
		}
		for _, idx := range support.GroundingChunkIndices {
			span.ChunkIndices = append(span.ChunkIndices, int(idx))
		}
		for _, score := range support.ConfidenceScores {
			span.Scores = append(span.Scores, float64(score))
		}
		supports = append(supports, span)
	}

	return answer, chunks, supports
}
