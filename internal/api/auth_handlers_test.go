package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kefystore-backend/internal/services"
)

// The refresh route carries no auth middleware, so the handler itself must
// read the bearer token from the header.
func TestRefreshTokenReadsBearerHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)

	userService := services.NewUserService(db)
	authService := services.NewAuthService("test-secret", 1800)
	handlers := NewAuthHandlers(userService, authService, services.NewOTPService(db), nil)

	router := gin.New()
	router.POST("/api/v1/auth/refresh", handlers.RefreshToken)

	user := seedClient(t, db)
	token, err := authService.GenerateToken(user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"token"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token required")

	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.Header.Set("Authorization", token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
