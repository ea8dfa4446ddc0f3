package users

import (
	"github.com/anoixa/image-tier/database/models"
	"gorm.io/gorm"
)

// Repository 用户仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create 创建用户
func (r *Repository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID 获取用户，等级和高度集合实时加载
// 授权判定依赖用户当前等级，调用方不应缓存结果
func (r *Repository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.Preload("Tier.ExtraHeights").First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername 根据用户名获取用户
func (r *Repository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Preload("Tier.ExtraHeights").Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateTier 更新用户等级引用，nil 表示回落 Basic
func (r *Repository) UpdateTier(userID uint, tierID *uint) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).Update("tier_id", tierID).Error
}
