package storage

import (
	"context"
	"io"
	"regexp"
)

// Provider 存储提供者接口 - 依赖倒置的核心抽象
// 定义了 blob 存储的基本操作，所有存储实现必须遵循此接口
type Provider interface {
	// SaveWithContext 保存文件到存储
	SaveWithContext(ctx context.Context, path string, file io.Reader) error

	// GetWithContext 从存储获取文件
	GetWithContext(ctx context.Context, path string) (io.ReadCloser, error)

	// DeleteWithContext 从存储删除文件，文件不存在不算错误
	DeleteWithContext(ctx context.Context, path string) error

	// Exists 检查文件是否存在
	Exists(ctx context.Context, path string) (bool, error)

	// Health 检查存储健康状态
	Health(ctx context.Context) error

	// Name 返回存储名称
	Name() string
}

// 存储路径形如 {owner-uuid}/{random-id}.{ext}，单层目录加文件名
var pathPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+/[a-zA-Z0-9_-]+\.[a-z]+$`)

// IsValidPath 校验存储路径，拒绝目录穿越和绝对路径
func IsValidPath(path string) bool {
	return pathPattern.MatchString(path)
}

// ReadAll 读取存储对象的全部字节
func ReadAll(ctx context.Context, p Provider, path string) ([]byte, error) {
	reader, err := p.GetWithContext(ctx, path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}
