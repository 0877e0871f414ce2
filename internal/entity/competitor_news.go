package entity

import (
	"time"

	"gorm.io/datatypes"
)

// CompetitorNews is a validated, persisted intelligence item. Rows are never
// mutated after insert; corrections happen by inserting superseding items.
type CompetitorNews struct {
	ID           string         `gorm:"column:id;primaryKey" json:"id"`
	CompetitorID string         `gorm:"column:competitorId;not null" json:"competitor_id"`
	EventType    string         `gorm:"column:eventType" json:"event_type"`
	Date         time.Time      `gorm:"column:date" json:"date"`
	Title        string         `gorm:"column:title;not null" json:"title"`
	Summary      string         `gorm:"column:summary" json:"summary"`
	ThreatLevel  int            `gorm:"column:threatLevel" json:"threat_level"`
	Details      datatypes.JSON `gorm:"column:details" json:"details"`
	SourceURL    string         `gorm:"column:sourceUrl;unique;not null" json:"source_url"`
	IsRead       bool           `gorm:"column:isRead" json:"is_read"`
	IsStarred    bool           `gorm:"column:isStarred" json:"is_starred"`
	ExtractedAt  time.Time      `gorm:"column:extractedAt" json:"extracted_at"`
	Region       string         `gorm:"column:region" json:"region"`
}

// TableName matches the Prisma-managed schema.
func (CompetitorNews) TableName() string {
	return "CompetitorNews"
}
