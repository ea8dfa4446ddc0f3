package models

import "gorm.io/gorm"

// Tier 订阅等级，决定原图访问、二值图访问和额外缩略图高度
type Tier struct {
	gorm.Model
	Name           string             `gorm:"uniqueIndex;not null;size:255" json:"name"`
	AllowsOriginal bool               `gorm:"default:false;not null" json:"allows_original"`
	AllowsBinary   bool               `gorm:"default:false;not null" json:"allows_binary"`
	ExtraHeights   []*AvailableHeight `gorm:"many2many:tier_heights;" json:"extra_heights,omitempty"`
}

// TableName 指定表名
func (Tier) TableName() string {
	return "tiers"
}

// ExtraImageSizes 等级包含的额外高度集合，不含保留的基础高度
func (t *Tier) ExtraImageSizes() []int {
	sizes := make([]int, 0, len(t.ExtraHeights))
	for _, h := range t.ExtraHeights {
		sizes = append(sizes, h.Height)
	}
	return sizes
}

// HasHeight 检查等级是否包含指定高度
func (t *Tier) HasHeight(height int) bool {
	for _, h := range t.ExtraHeights {
		if h.Height == height {
			return true
		}
	}
	return false
}
