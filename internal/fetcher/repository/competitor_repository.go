package repository

import (
	"context"
	"sort"

	"github.com/ClementStand/chmsa-intel-fetcher/internal/entity"

	"gorm.io/gorm"
)

// priorityCompetitors are processed first, they are the entities most likely
// to have fresh news.
var priorityCompetitors = []string{
	"Indústrias Romi", "Fagor Automation", "DMG Mori", "Mazak",
	"Haas Automation", "Trumpf", "Okuma", "Sandvik", "Makino", "Hermle",
}

type competitorRepository struct {
	db *gorm.DB
}

// NewCompetitorRepository creates a new CompetitorRepository.
func NewCompetitorRepository(db *gorm.DB) CompetitorRepository {
	return &competitorRepository{db: db}
}

// GetActive returns competitors whose status is active or unset, priority
// names first and the rest alphabetically.
func (r *competitorRepository) GetActive(ctx context.Context) ([]entity.Competitor, error) {
	var competitors []entity.Competitor
	err := r.db.WithContext(ctx).
		Where("status = ? OR status IS NULL", "active").
		Find(&competitors).Error
	if err != nil {
		return nil, err
	}

	sort.SliceStable(competitors, func(i, j int) bool {
		bi, pi := priorityRank(competitors[i].Name)
		bj, pj := priorityRank(competitors[j].Name)
		if bi != bj {
			return bi < bj
		}
		if bi == 0 {
			return pi < pj
		}
		return competitors[i].Name < competitors[j].Name
	})
	return competitors, nil
}

func priorityRank(name string) (bucket, index int) {
	for i, p := range priorityCompetitors {
		if p == name {
			return 0, i
		}
	}
	return 1, 0
}
