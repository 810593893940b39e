package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"milestofund/internal/domain"
	"milestofund/internal/middleware"
	"milestofund/internal/models"
	"milestofund/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	projectRepo      *repository.ProjectRepository
	contributionRepo *repository.ContributionRepository
	commentRepo      *repository.CommentRepository
	updateRepo       *repository.UpdateRepository
	userRepo         *repository.UserRepository
}

func NewProjectHandler(
	projectRepo *repository.ProjectRepository,
	contributionRepo *repository.ContributionRepository,
	commentRepo *repository.CommentRepository,
	updateRepo *repository.UpdateRepository,
	userRepo *repository.UserRepository,
) *ProjectHandler {
	return &ProjectHandler{
		projectRepo:      projectRepo,
		contributionRepo: contributionRepo,
		commentRepo:      commentRepo,
		updateRepo:       updateRepo,
		userRepo:         userRepo,
	}
}

// projectView decorates a project with the derived display fields.
func projectView(p *models.Project) gin.H {
	return gin.H{
		"project":            p,
		"funding_percentage": p.FundingPercentage(),
		"days_left":          p.DaysLeft(time.Now()),
	}
}

func (h *ProjectHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))
	// Clamp once, up front, so the query and the echoed pagination agree.
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 12
	}
	projects, total, err := h.projectRepo.List(repository.ListParams{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Sort:     c.Query("sort"),
		Status:   c.Query("status"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load projects.")
		return
	}
	respondPaginated(c, projects, total, page, limit)
}

func (h *ProjectHandler) Featured(c *gin.Context) {
	projects, err := h.projectRepo.Featured(6)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load featured projects.")
		return
	}
	respondSuccess(c, http.StatusOK, "Success", gin.H{"projects": projects})
}

// Recommendations suggests active projects in categories the user has backed,
// excluding already-backed ones; falls back to the most funded.
func (h *ProjectHandler) Recommendations(c *gin.Context) {
	userID := middleware.GetUserID(c)
	categories, backedIDs, err := h.contributionRepo.BackedCategories(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load recommendations.")
		return
	}
	projects, err := h.projectRepo.RecommendedFor(categories, backedIDs, 6)
	if err == nil && len(projects) == 0 {
		projects, err = h.projectRepo.PopularActive(6)
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load recommendations.")
		return
	}
	respondSuccess(c, http.StatusOK, "Success", gin.H{"projects": projects})
}

func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid project id.")
		return
	}
	project, err := h.projectRepo.GetByID(uint(id))
	if err != nil {
		respondError(c, http.StatusNotFound, "Project not found.")
		return
	}
	if err := h.projectRepo.IncrementViews(project.ID); err != nil {
		log.Printf("[project] view counter bump failed: id=%d err=%v", project.ID, err)
	}
	respondSuccess(c, http.StatusOK, "Success", projectView(project))
}

type RewardInput struct {
	Title             string  `json:"title" binding:"required"`
	Description       string  `json:"description"`
	MinAmount         float64 `json:"min_amount" binding:"required,gt=0"`
	MaxBackers        int     `json:"max_backers"`
	EstimatedDelivery string  `json:"estimated_delivery"`
}

type MilestoneInput struct {
	Title      string  `json:"title"`
	Percentage float64 `json:"percentage" binding:"required,gt=0"`
}

type CreateProjectRequest struct {
	Title         string           `json:"title" binding:"required"`
	Summary       string           `json:"summary"`
	Description   string           `json:"description" binding:"required"`
	Category      string           `json:"category" binding:"required"`
	Tags          []string         `json:"tags"`
	CoverImageURL string           `json:"cover_image_url"`
	VideoURL      string           `json:"video_url"`
	GoalAmount    float64          `json:"goal_amount" binding:"required,min=100"`
	Deadline      time.Time        `json:"deadline" binding:"required"`
	Status        string           `json:"status"`
	Rewards       []RewardInput    `json:"rewards"`
	Milestones    []MilestoneInput `json:"milestones"`
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Deadline.After(time.Now()) {
		respondError(c, http.StatusBadRequest, "Deadline must be in the future.")
		return
	}
	status := req.Status
	if status != domain.ProjectStatusDraft {
		status = domain.ProjectStatusActive
	}
	project := &models.Project{
		CreatorID:     middleware.GetUserID(c),
		Title:         req.Title,
		Summary:       req.Summary,
		Description:   req.Description,
		Category:      req.Category,
		Tags:          req.Tags,
		CoverImageURL: req.CoverImageURL,
		VideoURL:      req.VideoURL,
		GoalAmount:    req.GoalAmount,
		Deadline:      req.Deadline,
		Status:        status,
	}
	for _, r := range req.Rewards {
		project.Rewards = append(project.Rewards, models.Reward{
			Title:             r.Title,
			Description:       r.Description,
			MinAmount:         r.MinAmount,
			MaxBackers:        r.MaxBackers,
			EstimatedDelivery: r.EstimatedDelivery,
		})
	}
	for _, m := range req.Milestones {
		project.Milestones = append(project.Milestones, models.Milestone{
			Title:      m.Title,
			Percentage: m.Percentage,
		})
	}
	if err := h.projectRepo.Create(project); err != nil {
		log.Printf("[project] create failed: err=%v", err)
		respondError(c, http.StatusBadRequest, "Project creation failed.")
		return
	}
	full, err := h.projectRepo.GetByID(project.ID)
	if err != nil {
		full = project
	}
	respondSuccess(c, http.StatusCreated, "Project created", gin.H{"project": full})
}

// ownedProject loads the project and enforces creator-only access.
func (h *ProjectHandler) ownedProject(c *gin.Context) (*models.Project, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid project id.")
		return nil, false
	}
	project, err := h.projectRepo.GetLite(uint(id))
	if err != nil {
		respondError(c, http.StatusNotFound, "Project not found.")
		return nil, false
	}
	if project.CreatorID != middleware.GetUserID(c) {
		respondError(c, http.StatusForbidden, "Not authorised.")
		return nil, false
	}
	return project, true
}

type UpdateProjectRequest struct {
	Title         *string    `json:"title"`
	Summary       *string    `json:"summary"`
	Description   *string    `json:"description"`
	Category      *string    `json:"category"`
	Tags          []string   `json:"tags"`
	CoverImageURL *string    `json:"cover_image_url"`
	VideoURL      *string    `json:"video_url"`
	Deadline      *time.Time `json:"deadline"`
	Status        *string    `json:"status"`
}

func (h *ProjectHandler) Update(c *gin.Context) {
	project, ok := h.ownedProject(c)
	if !ok {
		return
	}
	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Title != nil {
		project.Title = *req.Title
	}
	if req.Summary != nil {
		project.Summary = *req.Summary
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Category != nil {
		project.Category = *req.Category
	}
	if req.Tags != nil {
		project.Tags = req.Tags
	}
	if req.CoverImageURL != nil {
		project.CoverImageURL = *req.CoverImageURL
	}
	if req.VideoURL != nil {
		project.VideoURL = *req.VideoURL
	}
	if req.Deadline != nil {
		project.Deadline = *req.Deadline
	}
	if req.Status != nil {
		switch *req.Status {
		case domain.ProjectStatusDraft, domain.ProjectStatusActive,
			domain.ProjectStatusEnded, domain.ProjectStatusCancelled:
			project.Status = *req.Status
		default:
			// funded is reserved for the milestone evaluator
			respondError(c, http.StatusBadRequest, "Invalid status.")
			return
		}
	}
	if err := h.projectRepo.Update(project); err != nil {
		respondError(c, http.StatusBadRequest, "Project update failed.")
		return
	}
	updated, err := h.projectRepo.GetByID(project.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to reload project.")
		return
	}
	respondSuccess(c, http.StatusOK, "Updated", gin.H{"project": updated})
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	project, ok := h.ownedProject(c)
	if !ok {
		return
	}
	if err := h.projectRepo.Delete(project.ID); err != nil {
		respondError(c, http.StatusInternalServerError, "Project deletion failed.")
		return
	}
	respondSuccess(c, http.StatusOK, "Project deleted", gin.H{})
}

type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *ProjectHandler) AddComment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid project id.")
		return
	}
	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Comment text is required.")
		return
	}
	if _, err := h.projectRepo.GetLite(uint(id)); err != nil {
		respondError(c, http.StatusNotFound, "Project not found.")
		return
	}
	comment := &models.Comment{
		ProjectID: uint(id),
		AuthorID:  middleware.GetUserID(c),
		Text:      req.Text,
	}
	if err := h.commentRepo.Create(comment); err != nil {
		respondError(c, http.StatusBadRequest, "Comment failed.")
		return
	}
	respondSuccess(c, http.StatusCreated, "Comment added", gin.H{"comment": comment})
}

func (h *ProjectHandler) DeleteComment(c *gin.Context) {
	cid, err := strconv.ParseUint(c.Param("cid"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid comment id.")
		return
	}
	comment, err := h.commentRepo.GetByID(uint(cid))
	if err != nil {
		respondError(c, http.StatusNotFound, "Comment not found.")
		return
	}
	if comment.AuthorID != middleware.GetUserID(c) {
		respondError(c, http.StatusForbidden, "Not authorised.")
		return
	}
	if err := h.commentRepo.Delete(comment.ID); err != nil {
		respondError(c, http.StatusInternalServerError, "Comment deletion failed.")
		return
	}
	respondSuccess(c, http.StatusOK, "Comment deleted", gin.H{})
}

type PostUpdateRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body" binding:"required"`
}

func (h *ProjectHandler) PostUpdate(c *gin.Context) {
	project, ok := h.ownedProject(c)
	if !ok {
		return
	}
	var req PostUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	update := &models.ProjectUpdate{
		ProjectID: project.ID,
		Title:     req.Title,
		Body:      req.Body,
	}
	if err := h.updateRepo.Create(update); err != nil {
		respondError(c, http.StatusBadRequest, "Update failed.")
		return
	}
	respondSuccess(c, http.StatusCreated, "Update posted", gin.H{"update": update})
}

type ImpactReportRequest struct {
	Summary    string   `json:"summary"`
	Highlights []string `json:"highlights"`
}

func (h *ProjectHandler) PublishImpactReport(c *gin.Context) {
	project, ok := h.ownedProject(c)
	if !ok {
		return
	}
	var req ImpactReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	now := time.Now()
	project.ImpactPublished = true
	project.ImpactSummary = req.Summary
	project.ImpactHighlights = req.Highlights
	project.ImpactAt = &now
	if err := h.projectRepo.Update(project); err != nil {
		respondError(c, http.StatusInternalServerError, "Impact report failed.")
		return
	}
	respondSuccess(c, http.StatusOK, "Impact report published", gin.H{})
}

func (h *ProjectHandler) ToggleSave(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid project id.")
		return
	}
	if _, err := h.projectRepo.GetLite(uint(id)); err != nil {
		respondError(c, http.StatusNotFound, "Project not found.")
		return
	}
	saved, err := h.userRepo.ToggleSave(middleware.GetUserID(c), uint(id))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Save failed.")
		return
	}
	msg := "Unsaved"
	if saved {
		msg = "Project saved"
	}
	respondSuccess(c, http.StatusOK, msg, gin.H{"saved": saved})
}

// Contributors lists a project's completed contributions, hiding the backer
// for anonymous ones.
func (h *ProjectHandler) Contributors(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid project id.")
		return
	}
	contributions, err := h.contributionRepo.ListByProject(uint(id), 50)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusInternalServerError, "Failed to load contributors.")
		return
	}
	contributors := make([]gin.H, 0, len(contributions))
	for i := range contributions {
		ct := &contributions[i]
		entry := gin.H{
			"amount":     ct.Amount,
			"message":    ct.Message,
			"anonymous":  ct.Anonymous,
			"created_at": ct.CreatedAt,
		}
		if !ct.Anonymous && ct.Backer != nil {
			entry["backer"] = ct.Backer.Public()
		}
		contributors = append(contributors, entry)
	}
	respondSuccess(c, http.StatusOK, "Success", gin.H{"contributors": contributors})
}
