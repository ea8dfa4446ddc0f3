package tiers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anoixa/image-tier/api/common"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type createTierRequest struct {
	Name           string `json:"name" binding:"required"`
	AllowsOriginal bool   `json:"allows_original"`
	AllowsBinary   bool   `json:"allows_binary"`
}

// CreateTier 创建等级
// POST /api/admin/tiers
func (h *Handler) CreateTier(c *gin.Context) {
	var req createTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	tier, err := h.service.CreateTier(req.Name, req.AllowsOriginal, req.AllowsBinary)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			common.RespondError(c, http.StatusConflict, "tier name already exists")
			return
		}
		common.RespondError(c, http.StatusInternalServerError, "failed to create tier")
		return
	}

	common.RespondSuccess(c, tierPayload(tier.ID, tier.Name, tier.AllowsOriginal, tier.AllowsBinary, tier.ExtraImageSizes()))
}

// ListTiers 列出全部等级
// GET /api/admin/tiers
func (h *Handler) ListTiers(c *gin.Context) {
	ts, err := h.tiersRepo.List()
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "failed to list tiers")
		return
	}

	out := make([]gin.H, 0, len(ts))
	for _, t := range ts {
		out = append(out, tierPayload(t.ID, t.Name, t.AllowsOriginal, t.AllowsBinary, t.ExtraImageSizes()))
	}
	common.RespondSuccess(c, gin.H{"tiers": out})
}

type extendTierRequest struct {
	HeightIDs []uint `json:"height_ids" binding:"required,min=1"`
}

// ExtendTier 向等级追加目录高度并为在该等级的用户补齐缩略图
// POST /api/admin/tiers/:id/heights
func (h *Handler) ExtendTier(c *gin.Context) {
	tierID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req extendTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.service.ExtendTier(c.Request.Context(), tierID, req.HeightIDs)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.RespondNotFound(c)
			return
		}
		common.RespondError(c, http.StatusInternalServerError, "failed to extend tier")
		return
	}

	payload := gin.H{
		"created":  report.Created,
		"existing": report.Existing,
	}
	if len(report.Failures) > 0 {
		payload["failures"] = len(report.Failures)
	}
	common.RespondSuccessMessage(c, "tier extended", payload)
}

// ShrinkTier 从等级移除高度，已渲染的缩略图保留
// DELETE /api/admin/tiers/:id/heights/:heightID
func (h *Handler) ShrinkTier(c *gin.Context) {
	tierID, ok := parseID(c, "id")
	if !ok {
		return
	}
	heightID, ok := parseID(c, "heightID")
	if !ok {
		return
	}

	if err := h.service.ShrinkTier(c.Request.Context(), tierID, heightID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.RespondNotFound(c)
			return
		}
		common.RespondError(c, http.StatusInternalServerError, "failed to shrink tier")
		return
	}
	common.RespondSuccessMessage(c, "height removed from tier", nil)
}

// DeleteTier 删除等级，引用它的用户回落 Basic
// DELETE /api/admin/tiers/:id
func (h *Handler) DeleteTier(c *gin.Context) {
	tierID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.tiersRepo.Delete(tierID); err != nil {
		common.RespondError(c, http.StatusInternalServerError, "failed to delete tier")
		return
	}
	common.RespondSuccessMessage(c, "tier deleted", nil)
}

type assignTierRequest struct {
	TierID *uint `json:"tier_id"`
}

// AssignUserTier 变更用户等级，tier_id 为 null 回落 Basic
// PUT /api/admin/users/:id/tier
func (h *Handler) AssignUserTier(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req assignTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.service.ReassignTier(c.Request.Context(), userID, req.TierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.RespondNotFound(c)
			return
		}
		common.RespondError(c, http.StatusInternalServerError, "failed to reassign tier")
		return
	}

	payload := gin.H{
		"created":  report.Created,
		"existing": report.Existing,
	}
	if len(report.Failures) > 0 {
		payload["failures"] = len(report.Failures)
	}
	common.RespondSuccessMessage(c, "tier reassigned", payload)
}

func tierPayload(id uint, name string, allowsOriginal, allowsBinary bool, extraHeights []int) gin.H {
	return gin.H{
		"id":              id,
		"name":            name,
		"allows_original": allowsOriginal,
		"allows_binary":   allowsBinary,
		"extra_heights":   extraHeights,
	}
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid "+param)
		return 0, false
	}
	return uint(id), true
}
