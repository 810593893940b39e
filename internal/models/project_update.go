package models

import "time"

// ProjectUpdate is a creator-posted progress note shown on the campaign page.
type ProjectUpdate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"not null;index" json:"project_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func (ProjectUpdate) TableName() string {
	return "project_updates"
}
