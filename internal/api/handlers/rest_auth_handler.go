package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hariombangali/rentora-backend/internal/auth"
	"github.com/hariombangali/rentora-backend/internal/cache"
	"github.com/hariombangali/rentora-backend/internal/config"
	"github.com/hariombangali/rentora-backend/internal/models"
	"github.com/hariombangali/rentora-backend/internal/services"
)

// RestAuthHandler handles registration, login and OTP verification.
type RestAuthHandler struct {
	userService services.IUserService
	otpStore    cache.IOTPStore
	cfg         *config.Config
}

// NewRestAuthHandler creates a new RestAuthHandler.
func NewRestAuthHandler(userService services.IUserService, otpStore cache.IOTPStore, cfg *config.Config) *RestAuthHandler {
	return &RestAuthHandler{
		userService: userService,
		otpStore:    otpStore,
		cfg:         cfg,
	}
}

// Register handles POST /v1/auth/register.
func (h *RestAuthHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		respondServiceError(c, err)
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Role, h.cfg.JwtSecret, h.cfg.JwtTTL)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// Login handles POST /v1/auth/login.
func (h *RestAuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		respondServiceError(c, err)
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Role, h.cfg.JwtSecret, h.cfg.JwtTTL)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// EmailExists handles GET /v1/auth/exists?email=.
func (h *RestAuthHandler) EmailExists(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email query parameter required"})
		return
	}
	exists, err := h.userService.EmailExists(c.Request.Context(), email)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

// RequestOTP handles POST /v1/auth/otp/request. The code is delivered
// out of band; only the delivery ID leaves the API.
func (h *RestAuthHandler) RequestOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	code, deliveryID, err := h.otpStore.Issue(c.Request.Context(), req.Email)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	// Delivery is an external concern; the code never appears in the
	// response.
	log.Printf("OTP issued for %s (delivery %s, code %s)", req.Email, deliveryID, code)

	c.JSON(http.StatusOK, gin.H{"message": "OTP sent", "deliveryId": deliveryID})
}

// VerifyOTP handles POST /v1/auth/otp/verify.
func (h *RestAuthHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	valid, err := h.otpStore.Verify(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": true})
}

// Me handles GET /v1/auth/me.
func (h *RestAuthHandler) Me(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	user, err := h.userService.FindByID(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpgradeRole handles POST /v1/auth/upgrade-role. A fresh token carries
// the new role.
func (h *RestAuthHandler) UpgradeRole(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	role := models.Role(req.Role)
	if err := h.userService.UpgradeRole(c.Request.Context(), userID, role); err != nil {
		respondServiceError(c, err)
		return
	}

	token, err := auth.GenerateJWT(userID, role, h.cfg.JwtSecret, h.cfg.JwtTTL)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Role updated", "token": token})
}
