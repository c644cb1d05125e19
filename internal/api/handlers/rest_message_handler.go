package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hariombangali/rentora-backend/internal/services"
	"github.com/hariombangali/rentora-backend/internal/utils"
)

// RestMessageHandler handles the chat endpoints.
type RestMessageHandler struct {
	messageService services.IMessageService
}

// NewRestMessageHandler creates a new RestMessageHandler.
func NewRestMessageHandler(messageService services.IMessageService) *RestMessageHandler {
	return &RestMessageHandler{messageService: messageService}
}

// Send handles POST /v1/messages.
func (h *RestMessageHandler) Send(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req struct {
		ReceiverID string `json:"receiverId" binding:"required"`
		PropertyID string `json:"propertyId" binding:"required"`
		Content    string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}
	receiverID, err := utils.ParseSixID(req.ReceiverID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid receiverId"})
		return
	}
	propertyID, err := utils.ParseSixID(req.PropertyID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid propertyId"})
		return
	}

	message, err := h.messageService.Send(c.Request.Context(), userID, receiverID, propertyID, req.Content)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": message})
}

// Inbox handles GET /v1/messages.
func (h *RestMessageHandler) Inbox(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	conversations, err := h.messageService.Inbox(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// Thread handles GET /v1/messages/:propertyId/:userId and marks the
// returned messages read.
func (h *RestMessageHandler) Thread(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	propertyID, ok := pathID(c, "propertyId")
	if !ok {
		return
	}
	counterpartID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	messages, err := h.messageService.Thread(c.Request.Context(), userID, counterpartID, propertyID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if err := h.messageService.MarkRead(c.Request.Context(), userID, counterpartID, propertyID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
