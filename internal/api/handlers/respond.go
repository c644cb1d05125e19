package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hariombangali/rentora-backend/internal/api/middleware"
	"github.com/hariombangali/rentora-backend/internal/models"
	"github.com/hariombangali/rentora-backend/internal/services"
	"github.com/hariombangali/rentora-backend/internal/utils"
)

// callerID extracts the authenticated user's ID from the Gin context.
// Returns false and writes a 401 when the context carries no valid ID.
func callerID(c *gin.Context) (utils.SixID, bool) {
	value, exists := c.Get(middleware.ContextKeyUserID)
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return utils.SixID{}, false
	}
	idStr, ok := value.(string)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return utils.SixID{}, false
	}
	id, err := utils.ParseSixID(idStr)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user identity"})
		return utils.SixID{}, false
	}
	return id, true
}

// callerRole returns the role AuthMiddleware stored in the context.
func callerRole(c *gin.Context) models.Role {
	return middleware.RoleFromContext(c)
}

// pathID parses a SixID path parameter, writing a 400 on failure.
func pathID(c *gin.Context, name string) (utils.SixID, bool) {
	id, err := utils.ParseSixID(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return utils.SixID{}, false
	}
	return id, true
}

// respondServiceError maps service sentinel errors onto HTTP statuses.
// Unexpected errors are logged and returned as an opaque 500.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("Internal error handling %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// parseDate accepts both plain dates and RFC3339 timestamps, since
// clients send either depending on the widget that produced the value.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
