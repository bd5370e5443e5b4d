package recommendation

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mlee/socialnet-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for recommendation operations
type Handler struct {
	service Service
}

// NewHandler creates a new recommendation handler
func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// GetUserRecommendations handles ranked user recommendations for the
// authenticated user
func (h *Handler) GetUserRecommendations(c *gin.Context) {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	limit := parseLimit(c)

	recommendations, err := h.service.GetUserRecommendations(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get recommendations"})
		return
	}

	c.JSON(http.StatusOK, &UserRecommendationResponse{
		Recommendations: recommendations,
		UserID:          userID,
		Count:           len(recommendations),
		GeneratedAt:     time.Now(),
	})
}

// GetPostRecommendations handles ranked post recommendations for the
// authenticated user
func (h *Handler) GetPostRecommendations(c *gin.Context) {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	limit := parseLimit(c)

	recommendations, err := h.service.GetPostRecommendations(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get recommendations"})
		return
	}

	c.JSON(http.StatusOK, &PostRecommendationResponse{
		Recommendations: recommendations,
		UserID:          userID,
		Count:           len(recommendations),
		GeneratedAt:     time.Now(),
	})
}

// Refresh re-materializes the authenticated user's recommendation list
func (h *Handler) Refresh(c *gin.Context) {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	processed, err := h.service.Refresh(userID)
	if err != nil {
		if errors.Is(err, ErrNoEmbedding) {
			c.JSON(http.StatusConflict, gin.H{"error": "No embedding available for user yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh recommendations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"processed": processed})
}

// UpdateStatusRequest represents a status transition request
type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

// UpdateStatus handles an explicit status transition on a recommendation
func (h *Handler) UpdateStatus(c *gin.Context) {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	candidateID, err := uuid.Parse(c.Param("candidate_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid candidate ID"})
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.UpdateStatus(userID, candidateID, req.Status); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recommendation not found"})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

// RegisterRoutes registers all recommendation routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	// All recommendation routes require authentication
	recommendations := router.Group("/recommendations")
	recommendations.Use(authMiddleware)
	{
		recommendations.GET("", h.GetUserRecommendations)
		recommendations.GET("/posts", h.GetPostRecommendations)
		recommendations.POST("/refresh", h.Refresh)
		recommendations.PUT("/:candidate_id/status", h.UpdateStatus)
	}
}

func parseLimit(c *gin.Context) int {
	limitStr := c.DefaultQuery("limit", "10")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 100 {
		return 10
	}
	return limit
}
