package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/ClementStand/chmsa-intel-fetcher/internal/entity"
	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/dto"
	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/repository"
	"github.com/ClementStand/chmsa-intel-fetcher/pkg/logger"
	"github.com/ClementStand/chmsa-intel-fetcher/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Save statuses returned by the gate. Anything but StatusSaved means the item
// was rejected before reaching the database.
const (
	StatusSaved          = "saved"
	StatusInvalidURL     = "invalid_url"
	StatusDuplicateURL   = "duplicate_url"
	StatusDuplicateTitle = "duplicate_title"
	StatusTooOld         = "too_old"
)

// defaultCutoffDays bounds how old a saved item may be when no explicit
// window is given. Industrial sales cycles run 12-24 months.
const defaultCutoffDays = 548

// industrialKeywords mark industries whose news stays relevant long enough to
// warrant the extended save window.
var industrialKeywords = []string{
	"machinery", "industrial", "manufactur", "fabricat", "equipment", "cnc",
}

// EffectiveDaysBack widens the save window to at least 18 months for
// industrial competitors, regardless of the search window.
func EffectiveDaysBack(industry string, daysBack int) int {
	lower := strings.ToLower(industry)
	for _, keyword := range industrialKeywords {
		if strings.Contains(lower, keyword) {
			if daysBack < 540 {
				return 540
			}
			return daysBack
		}
	}
	return daysBack
}

// Gate validates extracted items and writes the survivors. Every check runs
// in a fixed order so a rejected item always reports its first failure.
type Gate struct {
	newsRepo repository.CompetitorNewsRepository
	logger   *logger.Logger
	now      func() time.Time
}

// NewGate creates a new Gate.
func NewGate(newsRepo repository.CompetitorNewsRepository, log *logger.Logger) *Gate {
	return &Gate{
		newsRepo: newsRepo,
		logger:   log,
		now:      time.Now,
	}
}

// Save validates one item against the store and persists it. The returned
// status is StatusSaved or the rejection reason; err is set only on database
// failures.
func (g *Gate) Save(ctx context.Context, competitorID string, item dto.NewsItem, daysBack int) (string, error) {
	sourceURL := utils.SanitizeText(item.SourceURL)
	if sourceURL == "" || strings.Contains(sourceURL, "example.com") {
		return StatusInvalidURL, nil
	}

	if exists, err := g.newsRepo.ExistsBySourceURL(ctx, sourceURL); err != nil {
		return "", err
	} else if exists {
		return StatusDuplicateURL, nil
	}

	title := utils.Truncate(utils.SanitizeText(item.Title), 200)
	if title == "" {
		title = "Untitled"
	}
	if exists, err := g.newsRepo.ExistsByTitle(ctx, competitorID, title); err != nil {
		return "", err
	} else if exists {
		return StatusDuplicateTitle, nil
	}

	now := g.now().UTC()

	newsDate := now
	if item.Date != "" {
		if parsed, err := time.Parse("2006-01-02", item.Date); err == nil {
			newsDate = parsed.UTC()
		}
	}
	if newsDate.After(now) {
		newsDate = now
	}

	cutoff := now.AddDate(0, 0, -defaultCutoffDays)
	if daysBack > 0 {
		cutoff = now.AddDate(0, 0, -daysBack)
	}
	if newsDate.Before(cutoff) {
		// Grounded search sometimes reports a clearly bogus date because
		// date extraction failed. Re-anchor those to today instead of
		// discarding potentially valid niche content.
		if item.SearchRegion == dto.GroundedRegionLabel && newsDate.Year() < 2023 {
			newsDate = now
		} else {
			g.logger.Debug("Rejected stale item",
				logger.StringField("title", title),
				logger.StringField("date", newsDate.Format("2006-01-02")),
				logger.StringField("cutoff", cutoff.Format("2006-01-02")),
			)
			return StatusTooOld, nil
		}
	}

	threatLevel := item.ThreatLevel
	if threatLevel < 1 {
		threatLevel = 1
	} else if threatLevel > 5 {
		threatLevel = 5
	}

	region := item.Region
	if region == "" {
		region = "GLOBAL"
	}

	details := dto.NewsItemDetails{
		Location:       utils.SanitizeText(item.Details.Location),
		FinancialValue: utils.SanitizeText(item.Details.FinancialValue),
		Partners:       sanitizeAll(item.Details.Partners),
		Products:       sanitizeAll(item.Details.Products),
	}
	if item.Category != "" {
		details.Category = utils.SanitizeText(item.Category)
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return "", err
	}

	eventType := utils.Truncate(utils.SanitizeText(item.EventType), 100)
	if eventType == "" {
		eventType = "Unknown"
	}

	news := &entity.CompetitorNews{
		ID:           generateCuid(),
		CompetitorID: competitorID,
		EventType:    eventType,
		Date:         newsDate,
		Title:        title,
		Summary:      utils.Truncate(utils.SanitizeText(item.Summary), 1000),
		ThreatLevel:  threatLevel,
		Details:      datatypes.JSON(detailsJSON),
		SourceURL:    sourceURL,
		IsRead:       false,
		IsStarred:    false,
		ExtractedAt:  now,
		Region:       region,
	}
	if err := g.newsRepo.CreateIgnoreConflict(ctx, news); err != nil {
		return "", err
	}
	return StatusSaved, nil
}

func sanitizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, utils.SanitizeText(v))
	}
	return out
}

// generateCuid produces collision-resistant row IDs compatible with the ones
// already in the tables.
func generateCuid() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "c" + hex[:24]
}
