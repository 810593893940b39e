package models

import "time"

// Milestone is a funding-percentage threshold on a project. Reached is set
// once and never unset; ReachedAt records the first crossing.
type Milestone struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	ProjectID  uint       `gorm:"not null;index" json:"project_id"`
	Title      string     `gorm:"size:255" json:"title"`
	Percentage float64    `gorm:"not null" json:"percentage"`
	Reached    bool       `gorm:"not null;default:false" json:"reached"`
	ReachedAt  *time.Time `json:"reached_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (Milestone) TableName() string {
	return "milestones"
}
