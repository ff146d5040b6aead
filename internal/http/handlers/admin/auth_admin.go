package admin

import (
	"strings"
	"time"

	"github.com/reseller-hub/internal/http/response"
	"github.com/reseller-hub/internal/models"

	"github.com/gin-gonic/gin"
)

// LoginRequest 后台登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 后台登录返回
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Login 后台账号登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email and password are required")
		return
	}
	user, token, expiresAt, err := h.AuthService.Login(c.Request.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		requestLog(c).Warnw("admin_login_failed", "email", strings.TrimSpace(req.Email), "client_ip", c.ClientIP())
		respondServiceError(c, err)
		return
	}
	response.Success(c, LoginResponse{Token: token, ExpiresAt: expiresAt, User: user})
}

// GetCurrentUser 当前登录账号
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.AuthService.GetCurrentUser(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, user)
}
