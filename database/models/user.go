package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User 账号
// TierID 为空表示隐式的 Basic 等级：无原图、无二值图，只有基础缩略图
// UUID 作为存储命名空间键，稳定且不可变
type User struct {
	gorm.Model
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Password string `json:"-"`
	UUID     string `gorm:"uniqueIndex;size:36;not null" json:"uuid"`

	TierID *uint `json:"tier_id,omitempty"`
	Tier   *Tier `gorm:"constraint:OnDelete:SET NULL;" json:"tier,omitempty"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// BeforeCreate 分配存储命名空间 UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UUID == "" {
		u.UUID = uuid.NewString()
	}
	return nil
}

// IsBasic 是否为隐式 Basic 等级
func (u *User) IsBasic() bool {
	return u.Tier == nil
}

// ExtraImageSizes 当前等级的额外高度，Basic 为空集
func (u *User) ExtraImageSizes() []int {
	if u.Tier == nil {
		return nil
	}
	return u.Tier.ExtraImageSizes()
}
