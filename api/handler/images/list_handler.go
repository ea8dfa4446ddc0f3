package images

import (
	"net/http"

	"github.com/anoixa/image-tier/api/common"
	"github.com/anoixa/image-tier/api/middleware"
	"github.com/gin-gonic/gin"
)

// List 列出当前用户的全部原图及可用分辨率
// GET /api/images
func (h *Handler) List(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	listings, err := h.queryService.ListArtifacts(c.Request.Context(), userID)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "failed to list images")
		return
	}

	common.RespondSuccess(c, listings)
}
