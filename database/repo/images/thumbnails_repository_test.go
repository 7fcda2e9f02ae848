package images

import (
	"fmt"
	"testing"

	"github.com/corvell/imagetier/database/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupThumbnailTestDB 创建测试数据库
func setupThumbnailTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(&models.Image{}, &models.Thumbnail{})
	assert.NoError(t, err)
	return db
}

// --- 测试 GetByImageAndHeight ---

func TestGetByImageAndHeight_EarliestRowWins(t *testing.T) {
	db := setupThumbnailTestDB(t)
	repo := NewThumbnailRepository(db)

	// 并发写入者可能留下同 (image, height) 的多条记录
	early := &models.Thumbnail{ImageID: 1, Height: 100, Width: 50, Identifier: "a_100.jpg", StoragePath: "thumbnails/a_100.jpg", MimeType: models.MimeJPEG}
	assert.NoError(t, repo.SaveThumbnail(early))
	late := &models.Thumbnail{ImageID: 1, Height: 100, Width: 50, Identifier: "b_100.jpg", StoragePath: "thumbnails/b_100.jpg", MimeType: models.MimeJPEG}
	assert.NoError(t, repo.SaveThumbnail(late))

	got, err := repo.GetByImageAndHeight(1, 100)
	assert.NoError(t, err)
	assert.Equal(t, early.ID, got.ID)

	// 读取稳定收敛到同一行
	again, err := repo.GetByImageAndHeight(1, 100)
	assert.NoError(t, err)
	assert.Equal(t, early.ID, again.ID)
}

func TestGetByImageAndHeight_NotFound(t *testing.T) {
	db := setupThumbnailTestDB(t)
	repo := NewThumbnailRepository(db)

	_, err := repo.GetByImageAndHeight(1, 100)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetByImageAndHeight_KeyedByBoth(t *testing.T) {
	db := setupThumbnailTestDB(t)
	repo := NewThumbnailRepository(db)

	assert.NoError(t, repo.SaveThumbnail(&models.Thumbnail{ImageID: 1, Height: 100, Identifier: "a_100.jpg", StoragePath: "thumbnails/a_100.jpg", MimeType: models.MimeJPEG}))
	assert.NoError(t, repo.SaveThumbnail(&models.Thumbnail{ImageID: 2, Height: 100, Identifier: "c_100.jpg", StoragePath: "thumbnails/c_100.jpg", MimeType: models.MimeJPEG}))

	// 不同图片、不同高度互不串线
	_, err := repo.GetByImageAndHeight(1, 200)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got, err := repo.GetByImageAndHeight(2, 100)
	assert.NoError(t, err)
	assert.Equal(t, "c_100.jpg", got.Identifier)
}

// --- 测试 CountByImageAndHeight ---

func TestCountByImageAndHeight(t *testing.T) {
	db := setupThumbnailTestDB(t)
	repo := NewThumbnailRepository(db)

	count, err := repo.CountByImageAndHeight(1, 100)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)

	assert.NoError(t, repo.SaveThumbnail(&models.Thumbnail{ImageID: 1, Height: 100, Identifier: "a_100.jpg", StoragePath: "thumbnails/a_100.jpg", MimeType: models.MimeJPEG}))

	count, err = repo.CountByImageAndHeight(1, 100)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
