package repository

import (
	"milestofund/internal/models"

	"gorm.io/gorm"
)

type UpdateRepository struct {
	db *gorm.DB
}

func NewUpdateRepository(db *gorm.DB) *UpdateRepository {
	return &UpdateRepository{db: db}
}

func (r *UpdateRepository) Create(u *models.ProjectUpdate) error {
	return r.db.Create(u).Error
}
