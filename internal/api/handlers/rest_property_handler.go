package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hariombangali/rentora-backend/internal/models"
	"github.com/hariombangali/rentora-backend/internal/services"
	"github.com/hariombangali/rentora-backend/internal/storage"
	"github.com/hariombangali/rentora-backend/internal/tasks"
)

// RestPropertyHandler handles REST requests for property listings.
type RestPropertyHandler struct {
	propertyService services.IPropertyService
	storageService  storage.IS3Storage
	taskClient      tasks.IClient
}

// NewRestPropertyHandler creates a new RestPropertyHandler. storage and
// taskClient may be nil when image upload is not configured.
func NewRestPropertyHandler(propertyService services.IPropertyService, storageService storage.IS3Storage, taskClient tasks.IClient) *RestPropertyHandler {
	return &RestPropertyHandler{
		propertyService: propertyService,
		storageService:  storageService,
		taskClient:      taskClient,
	}
}

// Search handles GET /v1/properties.
func (h *RestPropertyHandler) Search(c *gin.Context) {
	filter := services.PropertySearch{
		City:       c.Query("city"),
		Type:       models.PropertyType(c.Query("type")),
		Furnishing: c.Query("furnishing"),
		Query:      c.Query("q"),
	}
	if min, err := strconv.ParseFloat(c.Query("minPrice"), 64); err == nil {
		filter.MinPrice = min
	}
	if max, err := strconv.ParseFloat(c.Query("maxPrice"), 64); err == nil {
		filter.MaxPrice = max
	}
	if limit, err := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64); err == nil && limit > 0 && limit <= 200 {
		filter.Limit = limit
	}
	if skip, err := strconv.ParseInt(c.Query("skip"), 10, 64); err == nil && skip > 0 {
		filter.Skip = skip
	}

	properties, err := h.propertyService.Search(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": properties})
}

// Get handles GET /v1/properties/:id.
func (h *RestPropertyHandler) Get(c *gin.Context) {
	propertyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	property, err := h.propertyService.FindByID(c.Request.Context(), propertyID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property": property})
}

type createPropertyRequest struct {
	Title         string                  `json:"title" binding:"required"`
	Description   string                  `json:"description"`
	Price         float64                 `json:"price" binding:"required"`
	Deposit       float64                 `json:"deposit"`
	Type          string                  `json:"type" binding:"required"`
	Furnishing    string                  `json:"furnishing"`
	Location      models.PropertyLocation `json:"location" binding:"required"`
	Tenants       string                  `json:"tenants"`
	AvailableFrom string                  `json:"availableFrom"`
	Amenities     []string                `json:"amenities"`
	OwnerKYC      *models.OwnerKYC        `json:"ownerKYC"`
}

// Create handles POST /v1/properties.
func (h *RestPropertyHandler) Create(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req createPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	property := &models.Property{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Deposit:     req.Deposit,
		Type:        models.PropertyType(req.Type),
		Furnishing:  req.Furnishing,
		Location:    req.Location,
		Tenants:     req.Tenants,
		Amenities:   req.Amenities,
	}
	if req.AvailableFrom != "" {
		t, err := parseDate(req.AvailableFrom)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid availableFrom date"})
			return
		}
		property.AvailableFrom = &t
	}

	created, err := h.propertyService.Create(c.Request.Context(), userID, property, req.OwnerKYC)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Property submitted for review", "property": created})
}

// Update handles PUT /v1/properties/:id.
func (h *RestPropertyHandler) Update(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	propertyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req createPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	property := &models.Property{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Deposit:     req.Deposit,
		Type:        models.PropertyType(req.Type),
		Furnishing:  req.Furnishing,
		Location:    req.Location,
		Tenants:     req.Tenants,
		Amenities:   req.Amenities,
	}
	property.SetID(propertyID)
	if req.AvailableFrom != "" {
		t, err := parseDate(req.AvailableFrom)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid availableFrom date"})
			return
		}
		property.AvailableFrom = &t
	}

	if err := h.propertyService.Update(c.Request.Context(), userID, callerRole(c), property); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Property updated, pending review"})
}

// Mine handles GET /v1/properties/mine.
func (h *RestPropertyHandler) Mine(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	properties, err := h.propertyService.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": properties})
}

// UploadURL handles POST /v1/properties/:id/upload-url: a presigned PUT
// URL the client uploads the image to directly.
func (h *RestPropertyHandler) UploadURL(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	propertyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if h.storageService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image upload not configured"})
		return
	}

	var req struct {
		Filename    string `json:"filename" binding:"required"`
		ContentType string `json:"contentType" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	property, err := h.propertyService.FindByID(c.Request.Context(), propertyID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if property.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner may upload images"})
		return
	}

	url, key, err := h.storageService.GeneratePresignedPutURL(c.Request.Context(), userID.String(), propertyID.String(), req.Filename, req.ContentType)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"uploadUrl": url, "key": key})
}

// ConfirmImage handles POST /v1/properties/:id/images: the client
// confirms the upload finished and the key is queued for processing.
func (h *RestPropertyHandler) ConfirmImage(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	propertyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Key string `json:"key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	property, err := h.propertyService.FindByID(c.Request.Context(), propertyID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if property.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner may add images"})
		return
	}

	if h.taskClient == nil {
		// No background worker configured; attach the raw key directly.
		if _, err := h.propertyService.AttachImages(c.Request.Context(), userID, propertyID, []string{req.Key}); err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Image attached"})
		return
	}

	if err := tasks.EnqueueImageProcess(h.taskClient, req.Key, propertyID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Image queued for processing"})
}
