package artifacts

import (
	"errors"

	"github.com/anoixa/image-tier/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("artifact not found")

// Repository 图片记录仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB 返回底层连接，用于跨仓库事务
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// CreateOriginal 创建原图记录
func (r *Repository) CreateOriginal(img *models.UploadedImage) error {
	return r.db.Create(img).Error
}

// CreateDerivative 创建衍生图记录
// (parent_id, height) 唯一约束裁决并发创建：冲突时不报错、不写入，
// 返回 created=false，先写者的记录生效
func (r *Repository) CreateDerivative(img *models.UploadedImage) (created bool, err error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "parent_id"}, {Name: "height"}},
		DoNothing: true,
	}).Create(img)

	if result.Error != nil {
		// 部分驱动在 DoNothing 下仍可能上抛唯一约束错误，同样视为已满足
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetByID 根据 ID 获取记录，附带所有者
func (r *Repository) GetByID(id uint) (*models.UploadedImage, error) {
	var img models.UploadedImage
	err := r.db.Preload("Owner").First(&img, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &img, nil
}

// GetByStoredPath 根据存储路径获取记录
func (r *Repository) GetByStoredPath(path string) (*models.UploadedImage, error) {
	var img models.UploadedImage
	err := r.db.Preload("Owner").Where("stored_path = ?", path).First(&img).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &img, nil
}

// OriginalsByOwner 用户的全部原图
func (r *Repository) OriginalsByOwner(ownerID uint) ([]*models.UploadedImage, error) {
	var imgs []*models.UploadedImage
	err := r.db.Preload("Owner").Where("owner_id = ? AND parent_id IS NULL", ownerID).Find(&imgs).Error
	return imgs, err
}

// OriginalsByOwners 批量获取多个用户的原图
func (r *Repository) OriginalsByOwners(ownerIDs []uint) ([]*models.UploadedImage, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}
	var imgs []*models.UploadedImage
	err := r.db.Preload("Owner").Where("owner_id IN ? AND parent_id IS NULL", ownerIDs).Find(&imgs).Error
	return imgs, err
}

// ChildrenOf 原图的全部衍生图
func (r *Repository) ChildrenOf(parentID uint) ([]*models.UploadedImage, error) {
	var imgs []*models.UploadedImage
	err := r.db.Where("parent_id = ?", parentID).Find(&imgs).Error
	return imgs, err
}

// ExistingHeights 批量查询每个原图已存在的衍生高度
func (r *Repository) ExistingHeights(parentIDs []uint) (map[uint]map[int]bool, error) {
	result := make(map[uint]map[int]bool, len(parentIDs))
	for _, id := range parentIDs {
		result[id] = make(map[int]bool)
	}

	if len(parentIDs) == 0 {
		return result, nil
	}

	var rows []models.UploadedImage
	err := r.db.Select("parent_id, height").Where("parent_id IN ?", parentIDs).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		if row.ParentID == nil {
			continue
		}
		if _, ok := result[*row.ParentID]; ok {
			result[*row.ParentID][row.Height] = true
		}
	}

	return result, nil
}

// DeleteWithChildren 删除原图及其全部衍生图记录
// 在一个事务内先删子后删本体，返回被删记录的存储路径供调用方清理 blob
func (r *Repository) DeleteWithChildren(id uint) ([]string, error) {
	var paths []string

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var target models.UploadedImage
		if err := tx.First(&target, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var children []models.UploadedImage
		if err := tx.Where("parent_id = ?", id).Find(&children).Error; err != nil {
			return err
		}

		for _, c := range children {
			paths = append(paths, c.StoredPath)
		}
		paths = append(paths, target.StoredPath)

		if err := tx.Unscoped().Where("parent_id = ?", id).Delete(&models.UploadedImage{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.UploadedImage{}, id).Error
	})

	if err != nil {
		return nil, err
	}
	return paths, nil
}

// DeleteByOwner 删除用户的全部记录（级联用户删除时调用），返回存储路径
func (r *Repository) DeleteByOwner(ownerID uint) ([]string, error) {
	var paths []string

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var rows []models.UploadedImage
		if err := tx.Where("owner_id = ?", ownerID).Find(&rows).Error; err != nil {
			return err
		}
		for _, row := range rows {
			paths = append(paths, row.StoredPath)
		}
		return tx.Unscoped().Where("owner_id = ?", ownerID).Delete(&models.UploadedImage{}).Error
	})

	if err != nil {
		return nil, err
	}
	return paths, nil
}
