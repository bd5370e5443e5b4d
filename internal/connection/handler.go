package connection

import (
	"net/http"
	"strings"

	"github.com/mlee/socialnet-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for connection operations
type Handler struct {
	service Service
}

// NewHandler creates a new connection handler
func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// Request handles creating a connection request
func (h *Handler) Request(c *gin.Context) {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	var req RequestConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conn, err := h.service.Request(userID, req.AddresseeID)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			c.JSON(http.StatusConflict, gin.H{"error": "Connection already exists"})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, conn)
}

// Accept handles accepting a pending connection request
func (h *Handler) Accept(c *gin.Context) {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	requesterID, err := uuid.Parse(c.Param("requester_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid requester ID"})
		return
	}

	if err := h.service.Accept(requesterID, userID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Connection not found"})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": StatusAccepted})
}

// Remove handles removing a connection in either direction
func (h *Handler) Remove(c *gin.Context) {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	otherID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if err := h.service.Remove(userID, otherID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Connection not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove connection"})
		}
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// List handles listing the authenticated user's connections
func (h *Handler) List(c *gin.Context) {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	connections, err := h.service.List(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list connections"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"connections": connections,
		"count":       len(connections),
	})
}

// RegisterRoutes registers all connection routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	connections := router.Group("/connections")
	connections.Use(authMiddleware)
	{
		connections.POST("", h.Request)
		connections.GET("", h.List)
		connections.PUT("/:requester_id/accept", h.Accept)
		connections.DELETE("/:user_id", h.Remove)
	}
}
