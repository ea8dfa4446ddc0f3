package images

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/anoixa/image-tier/api/common"
	"github.com/anoixa/image-tier/api/middleware"
	"github.com/gin-gonic/gin"
)

// IssueBinaryLink 为制品签发二值图能力链接
// POST /api/images/binary-link/*path?timeout=N
func (h *Handler) IssueBinaryLink(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	path := strings.TrimPrefix(c.Param("path"), "/")

	var requestedTimeout *int
	if raw := c.Query("timeout"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			common.RespondError(c, http.StatusBadRequest, "timeout must be an integer")
			return
		}
		requestedTimeout = &value
	}

	link, err := h.issuer.Issue(c.Request.Context(), userID, path, requestedTimeout)
	if err != nil {
		common.RespondNotFound(c)
		return
	}

	common.RespondSuccess(c, gin.H{
		"binary_image": fmt.Sprintf("/api/images/binary/%s", link.Token),
		"token":        link.Token,
		"timeout":      link.TimeoutSeconds,
	})
}

// GetBinary 兑换令牌，返回二值图
// GET /api/images/binary/:token
func (h *Handler) GetBinary(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	token := c.Param("token")
	result, err := h.issuer.Redeem(c.Request.Context(), userID, token)
	if err != nil {
		common.RespondNotFound(c)
		return
	}

	c.Data(http.StatusOK, result.MIMEType, result.Data)
}
