package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hariombangali/rentora-backend/internal/services"
)

// RestWishlistHandler exposes the saved-properties endpoints.
type RestWishlistHandler struct {
	wishlistService services.IWishlistService
}

// NewRestWishlistHandler creates a new RestWishlistHandler.
func NewRestWishlistHandler(wishlistService services.IWishlistService) *RestWishlistHandler {
	return &RestWishlistHandler{wishlistService: wishlistService}
}

// Add handles POST /v1/wishlist/:id.
func (h *RestWishlistHandler) Add(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	propertyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	wishlist, err := h.wishlistService.Add(c.Request.Context(), userID, propertyID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Property saved", "wishlist": wishlist})
}

// Remove handles DELETE /v1/wishlist/:id.
func (h *RestWishlistHandler) Remove(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	propertyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	wishlist, err := h.wishlistService.Remove(c.Request.Context(), userID, propertyID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Property removed", "wishlist": wishlist})
}

// List handles GET /v1/wishlist.
func (h *RestWishlistHandler) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	properties, err := h.wishlistService.List(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wishlist": properties})
}
