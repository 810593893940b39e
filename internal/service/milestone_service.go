package service

import (
	"time"

	"milestofund/internal/domain"
	"milestofund/internal/models"

	"gorm.io/gorm"
)

// MilestoneService re-derives milestone state from the current ledger totals.
// Evaluate is idempotent: milestones are only ever flipped from unreached to
// reached, and the funded transition is guarded on the current status, so
// concurrent or repeated evaluation produces no extra writes.
type MilestoneService struct {
	db *gorm.DB
}

func NewMilestoneService(db *gorm.DB) *MilestoneService {
	return &MilestoneService{db: db}
}

func (s *MilestoneService) Evaluate(projectID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var p models.Project
		if err := tx.Select("id", "amount_raised", "goal_amount", "status").
			First(&p, projectID).Error; err != nil {
			return err
		}
		if p.GoalAmount <= 0 {
			return nil
		}
		pct := p.AmountRaised / p.GoalAmount * 100

		now := time.Now()
		if err := tx.Model(&models.Milestone{}).
			Where("project_id = ? AND reached = ? AND percentage <= ?", projectID, false, pct).
			Updates(map[string]interface{}{"reached": true, "reached_at": now}).Error; err != nil {
			return err
		}

		// Guarding on status makes the transition fire at most once, even
		// with concurrent contributions pushing past the goal together.
		if p.AmountRaised >= p.GoalAmount {
			if err := tx.Model(&models.Project{}).
				Where("id = ? AND status = ?", projectID, domain.ProjectStatusActive).
				Update("status", domain.ProjectStatusFunded).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
