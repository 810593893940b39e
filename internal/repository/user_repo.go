package repository

import (
	"milestofund/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *models.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var u models.User
	if err := r.db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Update(u *models.User) error {
	return r.db.Save(u).Error
}

// ToggleSave bookmarks a project for the user, or removes the bookmark if it
// already exists. Returns whether the project is saved afterwards.
func (r *UserRepository) ToggleSave(userID, projectID uint) (bool, error) {
	var existing models.SavedProject
	err := r.db.Where("user_id = ? AND project_id = ?", userID, projectID).First(&existing).Error
	if err == nil {
		if err := r.db.Where("user_id = ? AND project_id = ?", userID, projectID).Delete(&models.SavedProject{}).Error; err != nil {
			return true, err
		}
		return false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return false, err
	}
	if err := r.db.Create(&models.SavedProject{UserID: userID, ProjectID: projectID}).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *UserRepository) GetSavedProjects(userID uint) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.
		Joins("JOIN saved_projects ON saved_projects.project_id = projects.id").
		Where("saved_projects.user_id = ?", userID).
		Order("saved_projects.created_at DESC").
		Find(&projects).Error
	return projects, err
}
