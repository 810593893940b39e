package models

import "time"

// Reward is a pledge tier on a project. BackerCount is incremented exactly
// once per contribution that references the tier.
type Reward struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ProjectID         uint      `gorm:"not null;index" json:"project_id"`
	Title             string    `gorm:"size:255;not null" json:"title"`
	Description       string    `gorm:"type:text" json:"description"`
	MinAmount         float64   `gorm:"not null" json:"min_amount"`
	MaxBackers        int       `gorm:"default:0" json:"max_backers"` // 0 = unlimited
	BackerCount       int       `gorm:"not null;default:0" json:"backer_count"`
	EstimatedDelivery string    `gorm:"size:64" json:"estimated_delivery"`
	CreatedAt         time.Time `json:"created_at"`
}

func (Reward) TableName() string {
	return "rewards"
}
