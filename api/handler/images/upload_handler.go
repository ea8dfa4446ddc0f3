package images

import (
	"errors"
	"io"
	"net/http"

	"github.com/anoixa/image-tier/api/common"
	"github.com/anoixa/image-tier/api/middleware"
	"github.com/anoixa/image-tier/internal/codec"
	"github.com/gin-gonic/gin"
)

// Upload 上传单张图片
// POST /api/images
func (h *Handler) Upload(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "missing 'image' file field")
		return
	}
	if h.maxUploadSize > 0 && fileHeader.Size > h.maxUploadSize {
		common.RespondError(c, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "failed to open uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	result, err := h.uploadService.Upload(c.Request.Context(), userID, data, fileHeader.Filename)
	if err != nil {
		if errors.Is(err, codec.ErrUnsupportedFormat) {
			common.RespondError(c, http.StatusBadRequest, "only JPEG and PNG images are accepted")
			return
		}
		common.RespondError(c, http.StatusInternalServerError, "failed to store image")
		return
	}

	payload := gin.H{
		"id":     result.Original.ID,
		"title":  result.Original.Title,
		"path":   result.Original.StoredPath,
		"height": result.Original.Height,
		"width":  result.Original.Width,
	}
	if len(result.Report.Failures) > 0 {
		// 部分缩略图渲染失败不影响上传成功，但向调用方如实报告
		failures := make([]string, 0, len(result.Report.Failures))
		for _, f := range result.Report.Failures {
			failures = append(failures, f.Error())
		}
		payload["thumbnail_failures"] = failures
	}

	common.RespondSuccessMessage(c, "image uploaded", payload)
}
