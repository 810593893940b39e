package models

import "time"

type SavedProject struct {
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	ProjectID uint      `gorm:"primaryKey" json:"project_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (SavedProject) TableName() string {
	return "saved_projects"
}
