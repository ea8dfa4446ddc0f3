package images

import (
	"io"
	"net/http"
	"strings"

	"github.com/anoixa/image-tier/api/common"
	"github.com/anoixa/image-tier/api/middleware"
	"github.com/gin-gonic/gin"
)

// GetFile 按存储路径返回制品字节
// GET /api/images/file/*path
// 授权失败统一返回 404，不暴露制品是否存在
func (h *Handler) GetFile(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	path := strings.TrimPrefix(c.Param("path"), "/")
	artifact, err := h.artifactsRepo.GetByStoredPath(path)
	if err != nil {
		common.RespondNotFound(c)
		return
	}

	if err := h.controller.RequireView(c.Request.Context(), userID, artifact); err != nil {
		common.RespondNotFound(c)
		return
	}

	reader, err := h.storage.GetWithContext(c.Request.Context(), artifact.StoredPath)
	if err != nil {
		common.RespondNotFound(c)
		return
	}
	defer reader.Close()

	c.Header("Content-Type", artifact.MIMEType())
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}
