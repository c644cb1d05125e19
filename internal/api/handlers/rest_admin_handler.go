package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hariombangali/rentora-backend/internal/services"
)

// RestAdminHandler exposes the moderation endpoints. All routes behind
// it require the admin role.
type RestAdminHandler struct {
	propertyService services.IPropertyService
	userService     services.IUserService
	homeService     services.IHomeService
}

// NewRestAdminHandler creates a new RestAdminHandler.
func NewRestAdminHandler(propertyService services.IPropertyService, userService services.IUserService, homeService services.IHomeService) *RestAdminHandler {
	return &RestAdminHandler{
		propertyService: propertyService,
		userService:     userService,
		homeService:     homeService,
	}
}

// PendingProperties handles GET /v1/admin/properties/pending.
func (h *RestAdminHandler) PendingProperties(c *gin.Context) {
	properties, err := h.propertyService.ListPending(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": properties})
}

// ModerateProperty handles PATCH /v1/admin/properties/:id/moderate.
func (h *RestAdminHandler) ModerateProperty(c *gin.Context) {
	propertyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Approve bool   `json:"approve"`
		Reason  string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	property, err := h.propertyService.Moderate(c.Request.Context(), propertyID, req.Approve, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	message := "Property approved"
	if !req.Approve {
		message = "Property rejected"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "property": property})
}

// PendingOwners handles GET /v1/admin/owners/pending.
func (h *RestAdminHandler) PendingOwners(c *gin.Context) {
	owners, err := h.userService.ListPendingOwners(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"owners": owners})
}

// VerifyOwner handles PATCH /v1/admin/owners/:id/verify.
func (h *RestAdminHandler) VerifyOwner(c *gin.Context) {
	ownerID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Approve bool   `json:"approve"`
		Reason  string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	if err := h.userService.VerifyOwner(c.Request.Context(), ownerID, req.Approve, req.Reason); err != nil {
		respondServiceError(c, err)
		return
	}
	message := "Owner verified"
	if !req.Approve {
		message = "Owner KYC rejected"
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// ModerateTestimonial handles PATCH /v1/admin/testimonials/:id/moderate.
func (h *RestAdminHandler) ModerateTestimonial(c *gin.Context) {
	testimonialID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Approve bool `json:"approve"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	if err := h.homeService.ModerateTestimonial(c.Request.Context(), testimonialID, req.Approve); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Testimonial updated"})
}
