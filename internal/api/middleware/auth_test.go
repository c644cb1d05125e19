package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hariombangali/rentora-backend/internal/auth"
	"github.com/hariombangali/rentora-backend/internal/models"
	"github.com/hariombangali/rentora-backend/internal/utils"
)

const authTestSecret = "test-secret"

func authTestRouter(secret string, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	chain := append([]gin.HandlerFunc{AuthMiddleware(secret)}, extra...)
	group := r.Group("/", chain...)
	group.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userId": c.GetString(ContextKeyUserID),
			"role":   RoleFromContext(c),
		})
	})
	return r
}

func doAuthRequest(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	userID := utils.NewSixID()
	token, err := auth.GenerateJWT(userID, models.RoleOwner, authTestSecret, time.Hour)
	require.NoError(t, err)

	w := doAuthRequest(authTestRouter(authTestSecret), "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
	assert.Contains(t, w.Body.String(), string(models.RoleOwner))
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	r := authTestRouter(authTestSecret)

	// Missing header.
	w := doAuthRequest(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Malformed header.
	w = doAuthRequest(r, "Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Token signed with a different secret.
	token, err := auth.GenerateJWT(utils.NewSixID(), models.RoleUser, "other-secret", time.Hour)
	require.NoError(t, err)
	w = doAuthRequest(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Expired token.
	token, err = auth.GenerateJWT(utils.NewSixID(), models.RoleUser, authTestSecret, -time.Minute)
	require.NoError(t, err)
	w = doAuthRequest(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminMiddleware(t *testing.T) {
	adminToken, err := auth.GenerateJWT(utils.NewSixID(), models.RoleAdmin, authTestSecret, time.Hour)
	require.NoError(t, err)
	userToken, err := auth.GenerateJWT(utils.NewSixID(), models.RoleUser, authTestSecret, time.Hour)
	require.NoError(t, err)

	r := authTestRouter(authTestSecret, AdminMiddleware())

	w := doAuthRequest(r, "Bearer "+adminToken)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doAuthRequest(r, "Bearer "+userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
