package images

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anoixa/image-tier/api/common"
	"github.com/anoixa/image-tier/api/middleware"
	"github.com/anoixa/image-tier/database/repo/artifacts"
	imageSvc "github.com/anoixa/image-tier/internal/image"
	"github.com/gin-gonic/gin"
)

// Delete 删除制品，原图级联删除全部衍生图
// DELETE /api/images/:id
func (h *Handler) Delete(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid image id")
		return
	}

	err = h.deleteService.Delete(c.Request.Context(), userID, uint(id))
	if err != nil {
		// 非所有者与不存在同样返回 404
		if errors.Is(err, artifacts.ErrNotFound) || errors.Is(err, imageSvc.ErrNotOwner) {
			common.RespondNotFound(c)
			return
		}
		common.RespondError(c, http.StatusInternalServerError, "failed to delete image")
		return
	}

	common.RespondSuccessMessage(c, "image deleted", nil)
}
