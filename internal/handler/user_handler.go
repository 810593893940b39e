package handler

import (
	"net/http"
	"strconv"
	"time"

	"milestofund/internal/domain"
	"milestofund/internal/middleware"
	"milestofund/internal/models"
	"milestofund/internal/repository"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userRepo         *repository.UserRepository
	projectRepo      *repository.ProjectRepository
	contributionRepo *repository.ContributionRepository
}

func NewUserHandler(userRepo *repository.UserRepository, projectRepo *repository.ProjectRepository, contributionRepo *repository.ContributionRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo, projectRepo: projectRepo, contributionRepo: contributionRepo}
}

// GetProfile is the public creator page: user plus their non-draft projects.
func (h *UserHandler) GetProfile(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid user id.")
		return
	}
	u, err := h.userRepo.GetByID(uint(id))
	if err != nil {
		respondError(c, http.StatusNotFound, "User not found.")
		return
	}
	all, err := h.projectRepo.ByCreator(u.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load projects.")
		return
	}
	projects := make([]models.Project, 0, len(all))
	for _, p := range all {
		if p.Status != domain.ProjectStatusDraft {
			projects = append(projects, p)
		}
	}
	respondSuccess(c, http.StatusOK, "Success", gin.H{"user": u, "projects": projects})
}

// GetDashboard aggregates the creator's campaigns: totals, recent
// contributions and a 30-day daily funding chart.
func (h *UserHandler) GetDashboard(c *gin.Context) {
	userID := middleware.GetUserID(c)
	projects, err := h.projectRepo.ByCreator(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load dashboard.")
		return
	}

	ids := make([]uint, 0, len(projects))
	var totalRaised float64
	for _, p := range projects {
		ids = append(ids, p.ID)
		totalRaised += p.AmountRaised
	}

	recent, err := h.contributionRepo.RecentForProjects(ids, 10)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load dashboard.")
		return
	}
	backers := make(map[uint]bool)
	for _, ct := range recent {
		backers[ct.BackerID] = true
	}

	since := time.Now().AddDate(0, 0, -30)
	window, err := h.contributionRepo.Since(ids, since)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load dashboard.")
		return
	}
	// Bucket by day, preserving chronological order.
	type dailyPoint struct {
		Date   string  `json:"date"`
		Amount float64 `json:"amount"`
	}
	var daily []dailyPoint
	index := make(map[string]int)
	for _, ct := range window {
		day := ct.CreatedAt.Format("Jan 2")
		if i, ok := index[day]; ok {
			daily[i].Amount += ct.Amount
		} else {
			index[day] = len(daily)
			daily = append(daily, dailyPoint{Date: day, Amount: ct.Amount})
		}
	}

	respondSuccess(c, http.StatusOK, "Success", gin.H{
		"projects":            projects,
		"totalRaised":         totalRaised,
		"totalBackers":        len(backers),
		"dailyData":           daily,
		"recentContributions": recent,
	})
}

func (h *UserHandler) GetSaved(c *gin.Context) {
	projects, err := h.userRepo.GetSavedProjects(middleware.GetUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load saved projects.")
		return
	}
	respondSuccess(c, http.StatusOK, "Success", gin.H{"projects": projects})
}
