package handler

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Standard response envelope. Every endpoint answers
// {success, message, data} on success and {success, message} on error.

func respondSuccess(c *gin.Context, status int, message string, data gin.H) {
	c.JSON(status, gin.H{"success": true, "message": message, "data": data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

func respondPaginated(c *gin.Context, data interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"pagination": gin.H{
			"total":      total,
			"page":       page,
			"limit":      limit,
			"totalPages": int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}
