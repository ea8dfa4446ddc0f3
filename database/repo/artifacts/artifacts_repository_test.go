package artifacts

import (
	"testing"

	"github.com/anoixa/image-tier/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 创建测试数据库
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.AvailableHeight{}, &models.Tier{}, &models.User{}, &models.UploadedImage{})
	require.NoError(t, err)

	return db
}

// createTestUser 创建测试用户
func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	user := &models.User{Username: username, Password: "x"}
	require.NoError(t, db.Create(user).Error)
	return user
}

// createTestOriginal 创建测试原图记录
func createTestOriginal(t *testing.T, repo *Repository, owner *models.User, path string, height int) *models.UploadedImage {
	img := &models.UploadedImage{
		OwnerID:    owner.ID,
		Title:      "test",
		StoredPath: path,
		Format:     models.FormatJPEG,
		Width:      height * 3 / 2,
		Height:     height,
	}
	require.NoError(t, repo.CreateOriginal(img))
	return img
}

// TestCreateDerivative_UniquePerParentHeight 测试同一原图同一高度只有一条衍生记录
func TestCreateDerivative_UniquePerParentHeight(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	owner := createTestUser(t, db, "alice")
	original := createTestOriginal(t, repo, owner, owner.UUID+"/orig.jpg", 1080)

	first := &models.UploadedImage{
		OwnerID:    owner.ID,
		Title:      "test",
		StoredPath: owner.UUID + "/thumb-a.jpg",
		Format:     models.FormatJPEG,
		Height:     200,
		ParentID:   &original.ID,
	}
	created, err := repo.CreateDerivative(first)
	require.NoError(t, err)
	assert.True(t, created)

	// 第二个写入者冲突时不报错、不写入
	second := &models.UploadedImage{
		OwnerID:    owner.ID,
		Title:      "test",
		StoredPath: owner.UUID + "/thumb-b.jpg",
		Format:     models.FormatJPEG,
		Height:     200,
		ParentID:   &original.ID,
	}
	created, err = repo.CreateDerivative(second)
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	require.NoError(t, db.Model(&models.UploadedImage{}).Where("parent_id = ?", original.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// 先写者的记录生效
	kept, err := repo.GetByStoredPath(owner.UUID + "/thumb-a.jpg")
	require.NoError(t, err)
	assert.Equal(t, 200, kept.Height)
}

// TestCreateOriginal_NullParentExempt 测试原图不参与 (parent, height) 唯一约束
func TestCreateOriginal_NullParentExempt(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	owner := createTestUser(t, db, "alice")

	// 两张同高度原图可以共存
	createTestOriginal(t, repo, owner, owner.UUID+"/a.jpg", 1080)
	createTestOriginal(t, repo, owner, owner.UUID+"/b.jpg", 1080)

	originals, err := repo.OriginalsByOwner(owner.ID)
	require.NoError(t, err)
	assert.Len(t, originals, 2)
}

// TestExistingHeights 测试批量查询已存在的衍生高度
func TestExistingHeights(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	owner := createTestUser(t, db, "alice")
	original := createTestOriginal(t, repo, owner, owner.UUID+"/orig.jpg", 1080)
	other := createTestOriginal(t, repo, owner, owner.UUID+"/other.jpg", 720)

	derivative := &models.UploadedImage{
		OwnerID:    owner.ID,
		Title:      "test",
		StoredPath: owner.UUID + "/thumb.jpg",
		Format:     models.FormatJPEG,
		Height:     200,
		ParentID:   &original.ID,
	}
	created, err := repo.CreateDerivative(derivative)
	require.NoError(t, err)
	require.True(t, created)

	existing, err := repo.ExistingHeights([]uint{original.ID, other.ID})
	require.NoError(t, err)
	assert.True(t, existing[original.ID][200])
	assert.False(t, existing[original.ID][400])
	assert.Empty(t, existing[other.ID])
}

// TestDeleteWithChildren 测试原图删除级联衍生图并返回全部存储路径
func TestDeleteWithChildren(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	owner := createTestUser(t, db, "alice")
	original := createTestOriginal(t, repo, owner, owner.UUID+"/orig.jpg", 1080)

	for _, h := range []int{200, 400} {
		d := &models.UploadedImage{
			OwnerID:    owner.ID,
			Title:      "test",
			StoredPath: owner.UUID + "/thumb-" + string(rune('0'+h/100)) + ".jpg",
			Format:     models.FormatJPEG,
			Height:     h,
			ParentID:   &original.ID,
		}
		created, err := repo.CreateDerivative(d)
		require.NoError(t, err)
		require.True(t, created)
	}

	paths, err := repo.DeleteWithChildren(original.ID)
	require.NoError(t, err)
	assert.Len(t, paths, 3)
	assert.Contains(t, paths, owner.UUID+"/orig.jpg")

	var count int64
	require.NoError(t, db.Model(&models.UploadedImage{}).Where("owner_id = ?", owner.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	_, err = repo.GetByID(original.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestGetByStoredPath_NotFound 测试不存在的路径返回 ErrNotFound
func TestGetByStoredPath_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	_, err := repo.GetByStoredPath("nobody/missing.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}
