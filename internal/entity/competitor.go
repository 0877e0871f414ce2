package entity

// Competitor is a tracked competitor organization. The roster is curated
// outside this service and is read-only to the pipeline.
type Competitor struct {
	ID           string `gorm:"column:id;primaryKey" json:"id"`
	Name         string `gorm:"column:name;not null" json:"name"`
	Website      string `gorm:"column:website" json:"website"`
	Industry     string `gorm:"column:industry" json:"industry"`
	Region       string `gorm:"column:region" json:"region"`
	Headquarters string `gorm:"column:headquarters" json:"headquarters"`
	Status       string `gorm:"column:status" json:"status"`
}

// TableName matches the Prisma-managed schema.
func (Competitor) TableName() string {
	return "Competitor"
}
