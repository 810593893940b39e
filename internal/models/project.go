package models

import (
	"math"
	"time"

	"milestofund/internal/domain"
)

type Project struct {
	ID            uint     `gorm:"primaryKey" json:"id"`
	CreatorID     uint     `gorm:"not null;index" json:"creator_id"`
	Title         string   `gorm:"size:255;not null" json:"title"`
	Summary       string   `gorm:"size:512" json:"summary"`
	Description   string   `gorm:"type:text;not null" json:"description"`
	Category      string   `gorm:"size:64;not null;index" json:"category"`
	Tags          []string `gorm:"serializer:json" json:"tags"`
	CoverImageURL string   `gorm:"size:512" json:"cover_image_url"`
	VideoURL      string   `gorm:"size:512" json:"video_url"`
	GoalAmount    float64  `gorm:"not null" json:"goal_amount"`
	// AmountRaised is mutated only by the contribution processor, via an
	// in-store increment. Never read-modify-write this column.
	AmountRaised float64   `gorm:"not null;default:0" json:"amount_raised"`
	Deadline     time.Time `gorm:"not null" json:"deadline"`
	Status       string    `gorm:"size:20;not null;index;default:'active'" json:"status"`
	Featured     bool      `gorm:"default:false" json:"featured"`
	Views        int64     `gorm:"not null;default:0" json:"views"`

	ImpactPublished  bool       `gorm:"default:false" json:"impact_published"`
	ImpactSummary    string     `gorm:"type:text" json:"impact_summary"`
	ImpactHighlights []string   `gorm:"serializer:json" json:"impact_highlights"`
	ImpactAt         *time.Time `json:"impact_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Creator    *User           `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Rewards    []Reward        `gorm:"foreignKey:ProjectID" json:"rewards,omitempty"`
	Milestones []Milestone     `gorm:"foreignKey:ProjectID" json:"milestones,omitempty"`
	Updates    []ProjectUpdate `gorm:"foreignKey:ProjectID" json:"updates,omitempty"`
	Comments   []Comment       `gorm:"foreignKey:ProjectID" json:"comments,omitempty"`
}

func (Project) TableName() string {
	return "projects"
}

// FundingPercentage returns funding progress capped at 100 for display.
func (p *Project) FundingPercentage() float64 {
	if p.GoalAmount <= 0 {
		return 0
	}
	return math.Min(p.AmountRaised/p.GoalAmount*100, 100)
}

// DaysLeft returns whole days until the deadline, floored at zero.
func (p *Project) DaysLeft(now time.Time) int {
	if !p.Deadline.After(now) {
		return 0
	}
	return int(math.Ceil(p.Deadline.Sub(now).Hours() / 24))
}

func (p *Project) CampaignEnded(now time.Time) bool {
	return p.Deadline.Before(now)
}

func (p *Project) IsActive() bool {
	return p.Status == domain.ProjectStatusActive
}
