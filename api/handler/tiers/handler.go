// Package tiers 提供等级与高度目录的管理端点。
package tiers

import (
	"github.com/anoixa/image-tier/database/repo/heights"
	tiersRepo "github.com/anoixa/image-tier/database/repo/tiers"
	tiersSvc "github.com/anoixa/image-tier/internal/tiers"
)

// Handler 等级管理处理器
type Handler struct {
	service     *tiersSvc.Service
	tiersRepo   *tiersRepo.Repository
	heightsRepo *heights.Repository
}

// NewHandler 创建等级管理处理器
func NewHandler(service *tiersSvc.Service, tiersRepository *tiersRepo.Repository, heightsRepository *heights.Repository) *Handler {
	return &Handler{
		service:     service,
		tiersRepo:   tiersRepository,
		heightsRepo: heightsRepository,
	}
}
