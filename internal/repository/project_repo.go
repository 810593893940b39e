package repository

import (
	"milestofund/internal/domain"
	"milestofund/internal/models"

	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// ListParams filters and paginates the public project listing.
type ListParams struct {
	Search   string
	Category string
	Sort     string
	Status   string
	Page     int
	Limit    int
}

func (r *ProjectRepository) Create(p *models.Project) error {
	// Nested rewards/milestones are inserted through the association.
	return r.db.Create(p).Error
}

// GetByID loads a project with its campaign-page relations.
func (r *ProjectRepository) GetByID(id uint) (*models.Project, error) {
	var p models.Project
	err := r.db.
		Preload("Creator").
		Preload("Rewards").
		Preload("Milestones").
		Preload("Updates", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Comments.Author").
		First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetLite loads only the project row, no relations. Used on hot paths
// (order creation, payment verification).
func (r *ProjectRepository) GetLite(id uint) (*models.Project, error) {
	var p models.Project
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) List(params ListParams) ([]models.Project, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 || params.Limit > 100 {
		params.Limit = 12
	}
	status := params.Status
	if status == "" {
		status = domain.ProjectStatusActive
	}

	q := r.db.Model(&models.Project{}).Where("status = ?", status)
	if params.Category != "" {
		q = q.Where("category = ?", params.Category)
	}
	if params.Search != "" {
		q = q.Where("title LIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch params.Sort {
	case domain.SortOldest:
		q = q.Order("created_at ASC")
	case domain.SortMostFunded:
		q = q.Order("amount_raised DESC")
	case domain.SortEndingSoon:
		q = q.Order("deadline ASC")
	default:
		q = q.Order("created_at DESC")
	}

	var projects []models.Project
	err := q.Preload("Creator").Preload("Rewards").
		Offset((params.Page - 1) * params.Limit).
		Limit(params.Limit).
		Find(&projects).Error
	return projects, total, err
}

// Update saves the row, leaving the ledger-owned columns alone: amount_raised
// and views move only via in-store increments, and writing back a value read
// earlier would silently undo concurrent contributions.
func (r *ProjectRepository) Update(p *models.Project) error {
	return r.db.
		Omit("amount_raised", "views", "created_at", "Creator", "Rewards", "Milestones", "Updates", "Comments").
		Save(p).Error
}

func (r *ProjectRepository) Delete(id uint) error {
	return r.db.Select("Rewards", "Milestones", "Updates", "Comments").Delete(&models.Project{ID: id}).Error
}

// IncrementViews bumps the view counter in-store; concurrent page loads must
// not lose counts.
func (r *ProjectRepository) IncrementViews(id uint) error {
	return r.db.Model(&models.Project{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (r *ProjectRepository) Featured(limit int) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.Preload("Creator").
		Where("featured = ? AND status = ?", true, domain.ProjectStatusActive).
		Order("amount_raised DESC").Limit(limit).
		Find(&projects).Error
	return projects, err
}

// PopularActive returns the most funded active projects, used as the
// recommendation fallback.
func (r *ProjectRepository) PopularActive(limit int) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.Preload("Creator").
		Where("status = ?", domain.ProjectStatusActive).
		Order("amount_raised DESC").Limit(limit).
		Find(&projects).Error
	return projects, err
}

// RecommendedFor returns active projects in the given categories, excluding
// ones the user already backed.
func (r *ProjectRepository) RecommendedFor(categories []string, excludeIDs []uint, limit int) ([]models.Project, error) {
	q := r.db.Preload("Creator").Where("status = ?", domain.ProjectStatusActive)
	if len(categories) > 0 {
		q = q.Where("category IN ?", categories)
	}
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}
	var projects []models.Project
	err := q.Order("amount_raised DESC").Limit(limit).Find(&projects).Error
	return projects, err
}

// ByCreator lists a creator's projects, newest first. Drafts are included;
// callers serving public profiles filter them out.
func (r *ProjectRepository) ByCreator(creatorID uint) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.Where("creator_id = ?", creatorID).
		Order("created_at DESC").Find(&projects).Error
	return projects, err
}
