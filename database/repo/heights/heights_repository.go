package heights

import (
	"errors"

	"github.com/anoixa/image-tier/database/models"
	"gorm.io/gorm"
)

// ErrDuplicateHeight 高度已存在于目录
var ErrDuplicateHeight = errors.New("height already exists in catalog")

// Repository 可选高度目录仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create 创建目录高度，保留高度和过小高度在模型钩子中被拒绝
func (r *Repository) Create(height int) (*models.AvailableHeight, error) {
	h := &models.AvailableHeight{Height: height}

	err := r.db.Create(h).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateHeight
		}
		return nil, err
	}
	return h, nil
}

// GetByID 根据 ID 获取
func (r *Repository) GetByID(id uint) (*models.AvailableHeight, error) {
	var h models.AvailableHeight
	err := r.db.First(&h, id).Error
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// GetByIDs 批量获取
func (r *Repository) GetByIDs(ids []uint) ([]*models.AvailableHeight, error) {
	var hs []*models.AvailableHeight
	err := r.db.Where("id IN ?", ids).Find(&hs).Error
	return hs, err
}

// List 列出目录全部高度
func (r *Repository) List() ([]*models.AvailableHeight, error) {
	var hs []*models.AvailableHeight
	err := r.db.Order("height asc").Find(&hs).Error
	return hs, err
}

// Delete 删除目录高度
func (r *Repository) Delete(id uint) error {
	return r.db.Delete(&models.AvailableHeight{}, id).Error
}
