package models

import "gorm.io/gorm"

// 图片编码格式常量，仅支持两种
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
)

// UploadedImage 上传图片记录，构成原图→衍生图的单层树
// ParentID 为空表示原图，Height 为其原始像素高度，不受目录约束
// ParentID 非空表示衍生图，Height 为渲染高度
// (parent_id, height) 组合唯一索引在存储层保证同一原图同一高度只有一条记录，
// 并发触发的重复创建由唯一约束裁决，原图的 parent_id 为 NULL 不参与冲突
type UploadedImage struct {
	gorm.Model
	OwnerID uint   `gorm:"not null;index" json:"owner_id"`
	Owner   User   `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Title   string `gorm:"not null" json:"title"`

	StoredPath string `gorm:"uniqueIndex;size:255;not null" json:"stored_path"`
	Format     string `gorm:"not null;size:10" json:"format"`
	Width      int    `json:"width"`
	Height     int    `gorm:"not null;index:idx_parent_height,unique,priority:2" json:"height"`

	ParentID *uint          `gorm:"index:idx_parent_height,unique,priority:1" json:"parent_id,omitempty"`
	Parent   *UploadedImage `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

// TableName 指定表名
func (UploadedImage) TableName() string {
	return "uploaded_images"
}

// IsOriginal 是否为原图
func (i *UploadedImage) IsOriginal() bool {
	return i.ParentID == nil
}

// MIMEType 编码格式对应的 MIME 类型
func (i *UploadedImage) MIMEType() string {
	if i.Format == FormatPNG {
		return "image/png"
	}
	return "image/jpeg"
}

// Extension 编码格式对应的文件扩展名
func (i *UploadedImage) Extension() string {
	if i.Format == FormatPNG {
		return ".png"
	}
	return ".jpg"
}
