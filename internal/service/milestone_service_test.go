package service

import (
	"testing"

	"milestofund/internal/domain"
	"milestofund/internal/models"
	"milestofund/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestEvaluateMarksReachedThresholds(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewMilestoneService(db)
	creator := testutil.SeedUser(t, db, "ravi")
	project := testutil.SeedProject(t, db, creator.ID, 1000)
	m25 := testutil.SeedMilestone(t, db, project.ID, 25)
	m50 := testutil.SeedMilestone(t, db, project.ID, 50)
	m75 := testutil.SeedMilestone(t, db, project.ID, 75)
	m100 := testutil.SeedMilestone(t, db, project.ID, 100)

	require.NoError(t, db.Model(&models.Project{}).Where("id = ?", project.ID).
		Update("amount_raised", 600).Error)
	require.NoError(t, svc.Evaluate(project.ID))

	for _, id := range []uint{m25.ID, m50.ID} {
		var m models.Milestone
		require.NoError(t, db.First(&m, id).Error)
		require.True(t, m.Reached)
		require.NotNil(t, m.ReachedAt)
	}
	for _, id := range []uint{m75.ID, m100.ID} {
		var m models.Milestone
		require.NoError(t, db.First(&m, id).Error)
		require.False(t, m.Reached)
		require.Nil(t, m.ReachedAt)
	}

	// 60% of goal does not fund the project.
	var p models.Project
	require.NoError(t, db.First(&p, project.ID).Error)
	require.Equal(t, domain.ProjectStatusActive, p.Status)
}

func TestEvaluateIsMonotonic(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewMilestoneService(db)
	creator := testutil.SeedUser(t, db, "ravi")
	project := testutil.SeedProject(t, db, creator.ID, 1000)
	milestone := testutil.SeedMilestone(t, db, project.ID, 50)

	require.NoError(t, db.Model(&models.Project{}).Where("id = ?", project.ID).
		Update("amount_raised", 500).Error)
	require.NoError(t, svc.Evaluate(project.ID))

	var m models.Milestone
	require.NoError(t, db.First(&m, milestone.ID).Error)
	require.True(t, m.Reached)
	first := *m.ReachedAt

	// Re-evaluating is a no-op: the original timestamp sticks.
	require.NoError(t, svc.Evaluate(project.ID))
	require.NoError(t, db.First(&m, milestone.ID).Error)
	require.True(t, m.Reached)
	require.Equal(t, first.Unix(), m.ReachedAt.Unix())
}

func TestEvaluateFundsActiveProjectOnce(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewMilestoneService(db)
	creator := testutil.SeedUser(t, db, "ravi")
	project := testutil.SeedProject(t, db, creator.ID, 1000)

	require.NoError(t, db.Model(&models.Project{}).Where("id = ?", project.ID).
		Update("amount_raised", 1000).Error)
	require.NoError(t, svc.Evaluate(project.ID))

	var p models.Project
	require.NoError(t, db.First(&p, project.ID).Error)
	require.Equal(t, domain.ProjectStatusFunded, p.Status)

	require.NoError(t, svc.Evaluate(project.ID))
	require.NoError(t, db.First(&p, project.ID).Error)
	require.Equal(t, domain.ProjectStatusFunded, p.Status)
}

func TestEvaluateDoesNotFundNonActiveProject(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewMilestoneService(db)
	creator := testutil.SeedUser(t, db, "ravi")

	for _, status := range []string{domain.ProjectStatusDraft, domain.ProjectStatusEnded, domain.ProjectStatusCancelled} {
		project := testutil.SeedProject(t, db, creator.ID, 1000)
		require.NoError(t, db.Model(&models.Project{}).Where("id = ?", project.ID).
			Updates(map[string]interface{}{"status": status, "amount_raised": 2000}).Error)
		require.NoError(t, svc.Evaluate(project.ID))

		var p models.Project
		require.NoError(t, db.First(&p, project.ID).Error)
		require.Equal(t, status, p.Status)
	}
}

func TestEvaluateZeroGoalIsNoop(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewMilestoneService(db)
	creator := testutil.SeedUser(t, db, "ravi")
	project := testutil.SeedProject(t, db, creator.ID, 0)
	milestone := testutil.SeedMilestone(t, db, project.ID, 50)

	require.NoError(t, db.Model(&models.Project{}).Where("id = ?", project.ID).
		Update("amount_raised", 500).Error)
	require.NoError(t, svc.Evaluate(project.ID))

	var m models.Milestone
	require.NoError(t, db.First(&m, milestone.ID).Error)
	require.False(t, m.Reached)
}
