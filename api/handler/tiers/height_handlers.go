package tiers

import (
	"errors"
	"net/http"

	"github.com/anoixa/image-tier/api/common"
	"github.com/anoixa/image-tier/database/models"
	"github.com/anoixa/image-tier/database/repo/heights"
	"github.com/gin-gonic/gin"
)

type createHeightRequest struct {
	Height int `json:"height" binding:"required"`
}

// CreateHeight 向目录添加可选高度
// POST /api/admin/heights
func (h *Handler) CreateHeight(c *gin.Context) {
	var req createHeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.heightsRepo.Create(req.Height)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrReservedHeight), errors.Is(err, models.ErrHeightTooSmall):
			common.RespondError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, heights.ErrDuplicateHeight):
			common.RespondError(c, http.StatusConflict, err.Error())
		default:
			common.RespondError(c, http.StatusInternalServerError, "failed to create height")
		}
		return
	}

	common.RespondSuccess(c, gin.H{
		"id":     created.ID,
		"height": created.Height,
	})
}

// ListHeights 列出目录全部高度
// GET /api/admin/heights
func (h *Handler) ListHeights(c *gin.Context) {
	hs, err := h.heightsRepo.List()
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "failed to list heights")
		return
	}

	out := make([]gin.H, 0, len(hs))
	for _, height := range hs {
		out = append(out, gin.H{
			"id":     height.ID,
			"height": height.Height,
		})
	}
	common.RespondSuccess(c, gin.H{"heights": out})
}
