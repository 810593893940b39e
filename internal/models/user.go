package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:128;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	Role         string    `gorm:"size:20;not null;default:'backer'" json:"role"`
	AvatarURL    string    `gorm:"size:512" json:"avatar_url"`
	Bio          string    `gorm:"type:text" json:"bio"`
	Website      string    `gorm:"size:512" json:"website"`
	TotalBacked  float64   `gorm:"not null;default:0" json:"total_backed"`
	TotalRaised  float64   `gorm:"not null;default:0" json:"total_raised"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// PublicUser is the embeddable shape exposed on comments, contributions etc.
type PublicUser struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL}
}
