package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hariombangali/rentora-backend/internal/services"
)

// RestHomeHandler serves the public landing-page aggregation.
type RestHomeHandler struct {
	homeService services.IHomeService
}

// NewRestHomeHandler creates a new RestHomeHandler.
func NewRestHomeHandler(homeService services.IHomeService) *RestHomeHandler {
	return &RestHomeHandler{homeService: homeService}
}

// Home handles GET /v1/home.
func (h *RestHomeHandler) Home(c *gin.Context) {
	data, err := h.homeService.Home(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// SubmitTestimonial handles POST /v1/home/testimonials.
func (h *RestHomeHandler) SubmitTestimonial(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req struct {
		Name   string `json:"name" binding:"required"`
		Text   string `json:"text" binding:"required"`
		Rating int    `json:"rating" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	testimonial, err := h.homeService.SubmitTestimonial(c.Request.Context(), userID, req.Name, req.Text, req.Rating)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Thanks for your feedback", "testimonial": testimonial})
}
