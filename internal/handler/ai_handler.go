package handler

import (
	"errors"
	"net/http"

	"milestofund/internal/service"

	"github.com/gin-gonic/gin"
)

type AIHandler struct {
	svc *service.AIService
}

func NewAIHandler(svc *service.AIService) *AIHandler {
	return &AIHandler{svc: svc}
}

type GenerateRequest struct {
	Tool   string            `json:"tool" binding:"required"`
	Inputs map[string]string `json:"inputs" binding:"required"`
}

// Generate proxies a copywriting prompt to the AI upstream and relays the
// result. Upstream failures map to retryable statuses.
func (h *AIHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "tool and inputs are required.")
		return
	}
	result, err := h.svc.Generate(c.Request.Context(), req.Tool, req.Inputs)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAIUnknownTool):
			respondError(c, http.StatusBadRequest, `Unknown AI tool. Valid tools: description, title, rewards, pitch, risks`)
		case errors.Is(err, service.ErrAINotConfigured):
			respondError(c, http.StatusServiceUnavailable, "AI features not configured. Add GEMINI_API_KEY to backend .env")
		case errors.Is(err, service.ErrAIInvalidKey):
			respondError(c, http.StatusUnauthorized, "Invalid GEMINI_API_KEY.")
		case errors.Is(err, service.ErrAIQuota):
			respondError(c, http.StatusTooManyRequests, "Gemini API quota exceeded. Try again in a minute.")
		default:
			respondError(c, http.StatusBadGateway, "AI service failed. Please try again.")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}
