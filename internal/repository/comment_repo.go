package repository

import (
	"milestofund/internal/models"

	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(c *models.Comment) error {
	if err := r.db.Create(c).Error; err != nil {
		return err
	}
	return r.db.Preload("Author").First(c, c.ID).Error
}

func (r *CommentRepository) GetByID(id uint) (*models.Comment, error) {
	var c models.Comment
	if err := r.db.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommentRepository) Delete(id uint) error {
	return r.db.Delete(&models.Comment{}, id).Error
}
