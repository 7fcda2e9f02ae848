package groups

import (
	"fmt"
	"testing"

	"github.com/corvell/imagetier/database/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB 创建测试数据库
func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.Group{}, &models.Size{})
	assert.NoError(t, err)
	return db
}

// --- 测试 GetOrCreateSize ---

func TestGetOrCreateSize_Shared(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	first, err := repo.GetOrCreateSize(100)
	assert.NoError(t, err)
	second, err := repo.GetOrCreateSize(100)
	assert.NoError(t, err)

	// 同一高度解析到同一条记录
	assert.Equal(t, first.ID, second.ID)

	var count int64
	assert.NoError(t, db.Model(&models.Size{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetOrCreateSize_RejectsNonPositive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	_, err := repo.GetOrCreateSize(0)
	assert.Error(t, err)
	_, err = repo.GetOrCreateSize(-100)
	assert.Error(t, err)
}

// --- 测试 CreateGroup ---

func TestCreateGroup_DeduplicatesHeights(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	group := &models.Group{Name: "basic"}
	err := repo.CreateGroup(group, []int{100, 500, 100})
	assert.NoError(t, err)

	loaded, err := repo.GetGroupByID(group.ID)
	assert.NoError(t, err)
	assert.Len(t, loaded.Sizes, 2)

	var count int64
	assert.NoError(t, db.Model(&models.Size{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestCreateGroup_SharesSizesAcrossGroups(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	first := &models.Group{Name: "basic"}
	assert.NoError(t, repo.CreateGroup(first, []int{200}))

	second := &models.Group{Name: "premium", AllowOriginalImage: true}
	assert.NoError(t, repo.CreateGroup(second, []int{200, 400}))

	// 高度 200 在两个分组之间共享同一条 Size 记录
	var count int64
	assert.NoError(t, db.Model(&models.Size{}).Where("height = ?", 200).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateGroup_DuplicateNameRejected(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	assert.NoError(t, repo.CreateGroup(&models.Group{Name: "basic"}, nil))
	assert.Error(t, repo.CreateGroup(&models.Group{Name: "basic"}, nil))
}

// --- 测试 GetGroupsByUserID ---

func TestGetGroupsByUserID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	member := &models.Group{Name: "member", AllowExpiringLink: true}
	assert.NoError(t, repo.CreateGroup(member, []int{100}))
	other := &models.Group{Name: "other"}
	assert.NoError(t, repo.CreateGroup(other, []int{400}))

	user := &models.User{Username: "alice", Password: "x"}
	assert.NoError(t, db.Create(user).Error)
	assert.NoError(t, db.Model(user).Association("Groups").Append(member))

	groups, err := repo.GetGroupsByUserID(user.ID)
	assert.NoError(t, err)
	assert.Len(t, groups, 1)
	assert.Equal(t, "member", groups[0].Name)
	assert.Len(t, groups[0].Sizes, 1)
	assert.Equal(t, 100, groups[0].Sizes[0].Height)
	assert.True(t, groups[0].AllowExpiringLink)
}

func TestGetGroupsByUserID_NoMembership(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	user := &models.User{Username: "bob", Password: "x"}
	assert.NoError(t, db.Create(user).Error)

	groups, err := repo.GetGroupsByUserID(user.ID)
	assert.NoError(t, err)
	assert.Empty(t, groups)
}
