package models

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// BaseHeight 系统保留的基础缩略图高度，上传后始终生成，对所有者始终可见
const BaseHeight = 200

// MinHeight 目录中可选高度的最小值
const MinHeight = 10

var (
	// ErrReservedHeight 保留高度不可加入目录
	ErrReservedHeight = fmt.Errorf("height %d is reserved for the base thumbnail", BaseHeight)
	// ErrHeightTooSmall 高度低于最小值
	ErrHeightTooSmall = fmt.Errorf("height must be at least %d", MinHeight)
	// ErrHeightImmutable 高度创建后不可修改
	ErrHeightImmutable = errors.New("height is immutable, delete and recreate instead")
)

// AvailableHeight 可选缩略图高度目录项
// 高度全局唯一，创建后不可修改：改值会让已渲染的缩略图失去归属
type AvailableHeight struct {
	gorm.Model
	Height int `gorm:"uniqueIndex:idx_height;not null" json:"height"`
}

// TableName 指定表名
func (AvailableHeight) TableName() string {
	return "available_heights"
}

// Validate 校验高度取值
func (h *AvailableHeight) Validate() error {
	if h.Height < MinHeight {
		return ErrHeightTooSmall
	}
	if h.Height == BaseHeight {
		return ErrReservedHeight
	}
	return nil
}

// BeforeCreate 创建前校验，约束在模型层强制而不只是约定
func (h *AvailableHeight) BeforeCreate(tx *gorm.DB) error {
	return h.Validate()
}

// BeforeUpdate 禁止修改高度值
func (h *AvailableHeight) BeforeUpdate(tx *gorm.DB) error {
	if tx.Statement.Changed("Height") {
		return ErrHeightImmutable
	}
	return nil
}
