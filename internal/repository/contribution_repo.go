package repository

import (
	"time"

	"milestofund/internal/domain"
	"milestofund/internal/models"

	"gorm.io/gorm"
)

type ContributionRepository struct {
	db *gorm.DB
}

func NewContributionRepository(db *gorm.DB) *ContributionRepository {
	return &ContributionRepository{db: db}
}

func (r *ContributionRepository) GetByPaymentID(paymentID string) (*models.Contribution, error) {
	var c models.Contribution
	err := r.db.Preload("Project").Where("payment_id = ?", paymentID).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContributionRepository) ListByBacker(backerID uint) ([]models.Contribution, error) {
	var contributions []models.Contribution
	err := r.db.Preload("Project").
		Where("backer_id = ? AND status = ?", backerID, domain.ContributionStatusCompleted).
		Order("created_at DESC").
		Find(&contributions).Error
	return contributions, err
}

// ListByProject returns a project's completed contributions, largest first.
// Anonymous contributions keep their backer hidden at the handler level.
func (r *ContributionRepository) ListByProject(projectID uint, limit int) ([]models.Contribution, error) {
	var contributions []models.Contribution
	err := r.db.Preload("Backer").
		Where("project_id = ? AND status = ?", projectID, domain.ContributionStatusCompleted).
		Order("amount DESC").Limit(limit).
		Find(&contributions).Error
	return contributions, err
}

func (r *ContributionRepository) RecentForProjects(projectIDs []uint, limit int) ([]models.Contribution, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	var contributions []models.Contribution
	err := r.db.Preload("Backer").
		Where("project_id IN ? AND status = ?", projectIDs, domain.ContributionStatusCompleted).
		Order("created_at DESC").Limit(limit).
		Find(&contributions).Error
	return contributions, err
}

// Since returns amount/created_at pairs for the dashboard chart window.
func (r *ContributionRepository) Since(projectIDs []uint, since time.Time) ([]models.Contribution, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	var contributions []models.Contribution
	err := r.db.Select("amount", "created_at", "backer_id", "project_id").
		Where("project_id IN ? AND status = ? AND created_at >= ?", projectIDs, domain.ContributionStatusCompleted, since).
		Order("created_at ASC").
		Find(&contributions).Error
	return contributions, err
}

// BackedCategories returns the distinct categories and project ids of a
// backer's completed contributions, feeding recommendations.
func (r *ContributionRepository) BackedCategories(backerID uint) (categories []string, projectIDs []uint, err error) {
	rows := []struct {
		ProjectID uint
		Category  string
	}{}
	err = r.db.Model(&models.Contribution{}).
		Select("contributions.project_id, projects.category").
		Joins("JOIN projects ON projects.id = contributions.project_id").
		Where("contributions.backer_id = ? AND contributions.status = ?", backerID, domain.ContributionStatusCompleted).
		Scan(&rows).Error
	if err != nil {
		return nil, nil, err
	}
	seen := make(map[string]bool)
	for _, row := range rows {
		projectIDs = append(projectIDs, row.ProjectID)
		if row.Category != "" && !seen[row.Category] {
			seen[row.Category] = true
			categories = append(categories, row.Category)
		}
	}
	return categories, projectIDs, nil
}
