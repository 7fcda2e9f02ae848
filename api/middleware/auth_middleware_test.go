package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/corvell/imagetier/database/models"
	"github.com/corvell/imagetier/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *auth.JWTService) {
	gin.SetMode(gin.TestMode)

	jwtService, err := auth.NewJWTService("test-secret-at-least-32-characters-long", time.Hour, 24*time.Hour)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/protected", RequireAuth(jwtService), func(c *gin.Context) {
		userID, _ := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return router, jwtService
}

func getWithAuth(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

// --- 测试 RequireAuth ---

func TestRequireAuth_ValidToken(t *testing.T) {
	router, jwtService := newAuthRouter(t)

	pair, err := jwtService.GenerateTokenPair(&models.User{Model: gorm.Model{ID: 7}, Username: "alice"})
	require.NoError(t, err)

	resp := getWithAuth(router, "Bearer "+pair.AccessToken)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"user_id":7`)
}

// 认证失败一律 403，不暴露 401 与 403 的区别
func TestRequireAuth_Failures(t *testing.T) {
	router, jwtService := newAuthRouter(t)

	pair, err := jwtService.GenerateTokenPair(&models.User{Model: gorm.Model{ID: 7}, Username: "alice"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing_header", ""},
		{"wrong_scheme", "Basic dXNlcjpwYXNz"},
		{"no_token", "Bearer"},
		{"garbage_token", "Bearer not.a.jwt"},
		{"refresh_token_rejected", "Bearer " + pair.RefreshToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := getWithAuth(router, tt.header)
			assert.Equal(t, http.StatusForbidden, resp.Code)
		})
	}
}

// --- 测试 RequireAdmin ---

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(isAdmin bool, authenticated bool) *gin.Engine {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			if authenticated {
				c.Set(ContextUserIDKey, uint(1))
				c.Set(ContextIsAdminKey, isAdmin)
			}
			c.Next()
		})
		router.GET("/admin", RequireAdmin(), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return router
	}

	doGet := func(router *gin.Engine) int {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)
		return recorder.Code
	}

	assert.Equal(t, http.StatusOK, doGet(newRouter(true, true)))
	assert.Equal(t, http.StatusForbidden, doGet(newRouter(false, true)))
	assert.Equal(t, http.StatusForbidden, doGet(newRouter(false, false)))
}
