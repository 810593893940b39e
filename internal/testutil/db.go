// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"milestofund/internal/database"
	"milestofund/internal/domain"
	"milestofund/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewDB opens an isolated in-memory sqlite store with the full schema.
// Each call gets its own named shared-cache database so the connection pool
// sees one store while tests stay independent of each other.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("test db pool: %v", err)
	}
	// A single connection keeps the memory store alive and sidesteps
	// sqlite's single-writer locking in concurrent tests.
	sqlDB.SetMaxOpenConns(1)
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// SeedUser inserts a backer with a zeroed ledger total.
func SeedUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: fmt.Sprintf("%s-%d@example.com", name, dbSeq.Add(1))}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedProject inserts an active project owned by creator with the given goal
// and a deadline 30 days out.
func SeedProject(t *testing.T, db *gorm.DB, creatorID uint, goal float64) *models.Project {
	t.Helper()
	p := &models.Project{
		CreatorID:   creatorID,
		Title:       "Test Campaign",
		Description: "A campaign used in tests",
		Category:    "technology",
		GoalAmount:  goal,
		Deadline:    time.Now().Add(30 * 24 * time.Hour),
		Status:      domain.ProjectStatusActive,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return p
}

// SeedMilestone attaches an unreached milestone at the given percentage.
func SeedMilestone(t *testing.T, db *gorm.DB, projectID uint, pct float64) *models.Milestone {
	t.Helper()
	m := &models.Milestone{ProjectID: projectID, Title: fmt.Sprintf("%.0f%%", pct), Percentage: pct}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("seed milestone: %v", err)
	}
	return m
}

// SeedReward attaches a pledge tier to the project.
func SeedReward(t *testing.T, db *gorm.DB, projectID uint, minAmount float64) *models.Reward {
	t.Helper()
	r := &models.Reward{ProjectID: projectID, Title: "Tier", MinAmount: minAmount}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("seed reward: %v", err)
	}
	return r
}
