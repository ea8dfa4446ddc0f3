package tiers

import (
	"github.com/anoixa/image-tier/database/models"
	"gorm.io/gorm"
)

// Repository 订阅等级仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create 创建等级
func (r *Repository) Create(tier *models.Tier) error {
	return r.db.Create(tier).Error
}

// GetByID 获取等级及其高度集合
func (r *Repository) GetByID(id uint) (*models.Tier, error) {
	var tier models.Tier
	err := r.db.Preload("ExtraHeights").First(&tier, id).Error
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

// List 列出全部等级
func (r *Repository) List() ([]*models.Tier, error) {
	var ts []*models.Tier
	err := r.db.Preload("ExtraHeights").Find(&ts).Error
	return ts, err
}

// AddHeights 向等级追加高度，返回真正新加入的高度值
// 已在集合中的高度被跳过，追加是触发缩略图补齐的事实来源
func (r *Repository) AddHeights(tier *models.Tier, hs []*models.AvailableHeight) ([]int, error) {
	var added []int
	for _, h := range hs {
		if tier.HasHeight(h.Height) {
			continue
		}
		if err := r.db.Model(tier).Association("ExtraHeights").Append(h); err != nil {
			return added, err
		}
		added = append(added, h.Height)
	}
	return added, nil
}

// RemoveHeight 从等级移除高度，已渲染的缩略图保留
func (r *Repository) RemoveHeight(tier *models.Tier, h *models.AvailableHeight) error {
	return r.db.Model(tier).Association("ExtraHeights").Delete(h)
}

// UsersWithTier 当前处于指定等级的全部用户 ID
func (r *Repository) UsersWithTier(tierID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.User{}).Where("tier_id = ?", tierID).Pluck("id", &ids).Error
	return ids, err
}

// Delete 删除等级，引用它的用户回落到 Basic
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("tier_id = ?", id).Update("tier_id", nil).Error; err != nil {
			return err
		}
		return tx.Select("ExtraHeights").Delete(&models.Tier{Model: gorm.Model{ID: id}}).Error
	})
}
