package repository

import (
	"context"
	"time"

	"github.com/ClementStand/chmsa-intel-fetcher/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type competitorNewsRepository struct {
	db *gorm.DB
}

// NewCompetitorNewsRepository creates a new CompetitorNewsRepository.
func NewCompetitorNewsRepository(db *gorm.DB) CompetitorNewsRepository {
	return &competitorNewsRepository{db: db}
}

// AllSourceURLs returns every stored source URL as a set, used to pre-filter
// candidates before extraction.
func (r *competitorNewsRepository) AllSourceURLs(ctx context.Context) (map[string]struct{}, error) {
	var urls []string
	err := r.db.WithContext(ctx).
		Model(&entity.CompetitorNews{}).
		Pluck("sourceUrl", &urls).Error
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		set[u] = struct{}{}
	}
	return set, nil
}

func (r *competitorNewsRepository) ExistsBySourceURL(ctx context.Context, sourceURL string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.CompetitorNews{}).
		Where(`"sourceUrl" = ?`, sourceURL).
		Count(&count).Error
	return count > 0, err
}

func (r *competitorNewsRepository) ExistsByTitle(ctx context.Context, competitorID, title string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.CompetitorNews{}).
		Where(`"competitorId" = ? AND title = ?`, competitorID, title).
		Count(&count).Error
	return count > 0, err
}

// CreateIgnoreConflict inserts the item, silently skipping rows whose source
// URL is already present.
func (r *competitorNewsRepository) CreateIgnoreConflict(ctx context.Context, news *entity.CompetitorNews) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sourceUrl"}},
			DoNothing: true,
		}).
		Create(news).Error
}

func (r *competitorNewsRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&entity.CompetitorNews{}).Error
}

// LastExtractedAt returns the newest extraction timestamp, or nil when the
// table is empty.
func (r *competitorNewsRepository) LastExtractedAt(ctx context.Context) (*time.Time, error) {
	var latest *time.Time
	err := r.db.WithContext(ctx).
		Model(&entity.CompetitorNews{}).
		Select(`MAX("extractedAt")`).
		Scan(&latest).Error
	if err != nil {
		return nil, err
	}
	return latest, nil
}
