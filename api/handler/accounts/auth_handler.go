// Package accounts 提供认证相关端点。
package accounts

import (
	"errors"
	"net/http"

	"github.com/anoixa/image-tier/api/common"
	"github.com/anoixa/image-tier/internal/auth"
	"github.com/gin-gonic/gin"
)

// Handler 认证处理器
type Handler struct {
	loginService *auth.LoginService
}

// NewHandler 创建认证处理器
func NewHandler(loginService *auth.LoginService) *Handler {
	return &Handler{loginService: loginService}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 用户登录
// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.loginService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			common.RespondError(c, http.StatusUnauthorized, "invalid username or password")
			return
		}
		common.RespondError(c, http.StatusInternalServerError, "login failed")
		return
	}

	common.RespondSuccess(c, gin.H{
		"access_token": result.AccessToken,
		"expires_at":   result.ExpiresAt.Unix(),
		"user_id":      result.UserID,
	})
}
