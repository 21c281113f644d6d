package handler

import (
	"github.com/buildtrack/buildtrack/internal/pm/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler 认证接口
type AuthHandler struct {
	svc *service.AuthService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, result)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, result)
}

// Me GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.svc.CurrentUser(c.Request.Context(), GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, user)
}
