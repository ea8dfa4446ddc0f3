package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupHeightTestDB 创建测试数据库
func setupHeightTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&AvailableHeight{})
	require.NoError(t, err)

	return db
}

// TestAvailableHeight_Validate 测试高度取值校验
func TestAvailableHeight_Validate(t *testing.T) {
	tests := []struct {
		name    string
		height  int
		wantErr error
	}{
		{"保留的基础高度", 200, ErrReservedHeight},
		{"低于最小值", 5, ErrHeightTooSmall},
		{"最小值边界", 10, nil},
		{"正常高度", 400, nil},
		{"零值", 0, ErrHeightTooSmall},
		{"负值", -100, ErrHeightTooSmall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &AvailableHeight{Height: tt.height}
			err := h.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestAvailableHeight_CreateRejectsInvalid 测试模型钩子在数据库层拒绝非法高度
func TestAvailableHeight_CreateRejectsInvalid(t *testing.T) {
	db := setupHeightTestDB(t)

	err := db.Create(&AvailableHeight{Height: 200}).Error
	assert.ErrorIs(t, err, ErrReservedHeight)

	err = db.Create(&AvailableHeight{Height: 5}).Error
	assert.ErrorIs(t, err, ErrHeightTooSmall)

	err = db.Create(&AvailableHeight{Height: 400}).Error
	assert.NoError(t, err)
}

// TestAvailableHeight_Immutable 测试高度创建后不可修改
func TestAvailableHeight_Immutable(t *testing.T) {
	db := setupHeightTestDB(t)

	h := &AvailableHeight{Height: 400}
	require.NoError(t, db.Create(h).Error)

	err := db.Model(h).Update("Height", 500).Error
	assert.ErrorIs(t, err, ErrHeightImmutable)

	// 数据库中的值未被改动
	var reloaded AvailableHeight
	require.NoError(t, db.First(&reloaded, h.ID).Error)
	assert.Equal(t, 400, reloaded.Height)
}

// TestAvailableHeight_UniqueHeight 测试目录高度全局唯一
func TestAvailableHeight_UniqueHeight(t *testing.T) {
	db := setupHeightTestDB(t)

	require.NoError(t, db.Create(&AvailableHeight{Height: 400}).Error)

	err := db.Create(&AvailableHeight{Height: 400}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
