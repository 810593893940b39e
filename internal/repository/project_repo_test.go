package repository

import (
	"testing"

	"milestofund/internal/domain"
	"milestofund/internal/models"
	"milestofund/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestListDefaultsToActive(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProjectRepository(db)
	creator := testutil.SeedUser(t, db, "ravi")

	active := testutil.SeedProject(t, db, creator.ID, 1000)
	draft := testutil.SeedProject(t, db, creator.ID, 1000)
	require.NoError(t, db.Model(&models.Project{}).Where("id = ?", draft.ID).
		Update("status", domain.ProjectStatusDraft).Error)

	projects, total, err := repo.List(ListParams{})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, projects, 1)
	require.Equal(t, active.ID, projects[0].ID)
}

func TestListSearchAndCategory(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProjectRepository(db)
	creator := testutil.SeedUser(t, db, "ravi")

	solar := testutil.SeedProject(t, db, creator.ID, 1000)
	require.NoError(t, db.Model(&models.Project{}).Where("id = ?", solar.ID).
		Updates(map[string]interface{}{"title": "Solar Chai Stall", "category": "environment"}).Error)
	film := testutil.SeedProject(t, db, creator.ID, 1000)
	require.NoError(t, db.Model(&models.Project{}).Where("id = ?", film.ID).
		Updates(map[string]interface{}{"title": "Indie Film", "category": "film"}).Error)

	projects, total, err := repo.List(ListParams{Search: "Solar"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, solar.ID, projects[0].ID)

	projects, total, err = repo.List(ListParams{Category: "film"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, film.ID, projects[0].ID)
}

func TestListSortMostFunded(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProjectRepository(db)
	creator := testutil.SeedUser(t, db, "ravi")

	small := testutil.SeedProject(t, db, creator.ID, 1000)
	big := testutil.SeedProject(t, db, creator.ID, 1000)
	require.NoError(t, db.Model(&models.Project{}).Where("id = ?", small.ID).
		Update("amount_raised", 100).Error)
	require.NoError(t, db.Model(&models.Project{}).Where("id = ?", big.ID).
		Update("amount_raised", 900).Error)

	projects, _, err := repo.List(ListParams{Sort: domain.SortMostFunded})
	require.NoError(t, err)
	require.Len(t, projects, 2)
	require.Equal(t, big.ID, projects[0].ID)
	require.Equal(t, small.ID, projects[1].ID)
}

func TestListPagination(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProjectRepository(db)
	creator := testutil.SeedUser(t, db, "ravi")
	for i := 0; i < 5; i++ {
		testutil.SeedProject(t, db, creator.ID, 1000)
	}

	projects, total, err := repo.List(ListParams{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Equal(t, int64(5), total)
	require.Len(t, projects, 2)
}

func TestUpdatePreservesLedgerColumns(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProjectRepository(db)
	creator := testutil.SeedUser(t, db, "ravi")
	project := testutil.SeedProject(t, db, creator.ID, 1000)

	// Another request raised funds after this copy of the row was loaded.
	loaded, err := repo.GetLite(project.ID)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Project{}).Where("id = ?", project.ID).
		Update("amount_raised", 700).Error)

	loaded.Title = "Renamed"
	require.NoError(t, repo.Update(loaded))

	var p models.Project
	require.NoError(t, db.First(&p, project.ID).Error)
	require.Equal(t, "Renamed", p.Title)
	require.Equal(t, float64(700), p.AmountRaised)
}

func TestIncrementViews(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProjectRepository(db)
	creator := testutil.SeedUser(t, db, "ravi")
	project := testutil.SeedProject(t, db, creator.ID, 1000)

	require.NoError(t, repo.IncrementViews(project.ID))
	require.NoError(t, repo.IncrementViews(project.ID))

	var p models.Project
	require.NoError(t, db.First(&p, project.ID).Error)
	require.Equal(t, int64(2), p.Views)
}
