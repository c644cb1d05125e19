package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hariombangali/rentora-backend/internal/services"
	"github.com/hariombangali/rentora-backend/internal/utils"
)

// RestContactHandler exposes the contact-reveal quota endpoints.
type RestContactHandler struct {
	contactService services.IContactService
}

// NewRestContactHandler creates a new RestContactHandler.
func NewRestContactHandler(contactService services.IContactService) *RestContactHandler {
	return &RestContactHandler{contactService: contactService}
}

// Quota handles GET /v1/contacts/quota?ownerId.
func (h *RestContactHandler) Quota(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var ownerID *utils.SixID
	if ownerStr := c.Query("ownerId"); ownerStr != "" {
		id, err := utils.ParseSixID(ownerStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ownerId"})
			return
		}
		ownerID = &id
	}

	status, err := h.contactService.Quota(c.Request.Context(), userID, ownerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// RevealPhone handles POST /v1/contacts/reveal-phone. Quota exhaustion
// is a 200 with limitReached set, not an error.
func (h *RestContactHandler) RevealPhone(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req struct {
		OwnerID    string `json:"ownerId" binding:"required"`
		PropertyID string `json:"propertyId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}
	ownerID, err := utils.ParseSixID(req.OwnerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ownerId"})
		return
	}
	propertyID, err := utils.ParseSixID(req.PropertyID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid propertyId"})
		return
	}

	result, err := h.contactService.Reveal(c.Request.Context(), userID, ownerID, propertyID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
