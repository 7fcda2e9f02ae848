package groups

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/corvell/imagetier/database/models"
	groupsRepo "github.com/corvell/imagetier/database/repo/groups"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupHandler(t *testing.T) (*gorm.DB, *gin.Engine) {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Group{}, &models.Size{}))

	handler := NewHandler(groupsRepo.NewRepository(db))
	router := gin.New()
	router.POST("/api/v1/groups", handler.CreateGroup)
	router.GET("/api/v1/groups", handler.ListGroups)
	router.GET("/api/v1/groups/:id", handler.GetGroup)
	return db, router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func getPath(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

// --- 测试创建分组 ---

func TestCreateGroup_Success(t *testing.T) {
	db, router := setupHandler(t)

	resp := postJSON(router, "/api/v1/groups",
		`{"name":"premium","size":[100,500],"allow_original_image":true,"allow_expiring_link":true}`)
	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.Contains(t, resp.Body.String(), `"name":"premium"`)
	assert.Contains(t, resp.Body.String(), `"allow_original_image":true`)

	var group models.Group
	require.NoError(t, db.Preload("Sizes").Where("name = ?", "premium").First(&group).Error)
	assert.Len(t, group.Sizes, 2)
	assert.True(t, group.AllowExpiringLink)
}

func TestCreateGroup_DeduplicatesHeights(t *testing.T) {
	db, router := setupHandler(t)

	resp := postJSON(router, "/api/v1/groups", `{"name":"basic","size":[100,500,100]}`)
	assert.Equal(t, http.StatusCreated, resp.Code)

	var group models.Group
	require.NoError(t, db.Preload("Sizes").Where("name = ?", "basic").First(&group).Error)
	assert.Len(t, group.Sizes, 2)
}

func TestCreateGroup_InvalidInput(t *testing.T) {
	_, router := setupHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing_name", `{"size":[100]}`},
		{"empty_name", `{"name":"","size":[100]}`},
		{"zero_height", `{"name":"bad","size":[0]}`},
		{"negative_height", `{"name":"bad","size":[100,-50]}`},
		{"not_json", `name=bad`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(router, "/api/v1/groups", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
		})
	}
}

func TestCreateGroup_NoSizes(t *testing.T) {
	db, router := setupHandler(t)

	// 空高度集合合法：成员不能请求任何缩略图
	resp := postJSON(router, "/api/v1/groups", `{"name":"no-thumbs","allow_original_image":true}`)
	assert.Equal(t, http.StatusCreated, resp.Code)

	var group models.Group
	require.NoError(t, db.Preload("Sizes").Where("name = ?", "no-thumbs").First(&group).Error)
	assert.Empty(t, group.Sizes)
}

// --- 测试查询分组 ---

func TestGetGroup(t *testing.T) {
	db, router := setupHandler(t)
	resp := postJSON(router, "/api/v1/groups", `{"name":"basic","size":[200]}`)
	require.Equal(t, http.StatusCreated, resp.Code)

	var group models.Group
	require.NoError(t, db.Where("name = ?", "basic").First(&group).Error)

	got := getPath(router, fmt.Sprintf("/api/v1/groups/%d", group.ID))
	assert.Equal(t, http.StatusOK, got.Code)
	assert.Contains(t, got.Body.String(), `"name":"basic"`)
	assert.Contains(t, got.Body.String(), `"size":[200]`)
}

func TestGetGroup_NotFound(t *testing.T) {
	_, router := setupHandler(t)

	resp := getPath(router, "/api/v1/groups/9999")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGetGroup_BadID(t *testing.T) {
	_, router := setupHandler(t)

	resp := getPath(router, "/api/v1/groups/abc")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestListGroups(t *testing.T) {
	_, router := setupHandler(t)
	require.Equal(t, http.StatusCreated, postJSON(router, "/api/v1/groups", `{"name":"basic","size":[100]}`).Code)
	require.Equal(t, http.StatusCreated, postJSON(router, "/api/v1/groups", `{"name":"premium","size":[100,400]}`).Code)

	resp := getPath(router, "/api/v1/groups")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"name":"basic"`)
	assert.Contains(t, resp.Body.String(), `"name":"premium"`)
}
