package handler

import (
	"github.com/buildtrack/buildtrack/internal/pm/service"
	"github.com/gin-gonic/gin"
)

// UserHandler 用户查询接口
type UserHandler struct {
	svc *service.UserService
}

// NewUserHandler 创建用户处理器
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// List GET /api/users?role=Engineer
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.svc.List(c.Request.Context(), c.Query("role"))
	if err != nil {
		InternalError(c, "failed to list users: "+err.Error())
		return
	}
	Success(c, gin.H{"items": users})
}

// ListEngineers GET /api/users/engineers
func (h *UserHandler) ListEngineers(c *gin.Context) {
	engineers, err := h.svc.ListEngineers(c.Request.Context())
	if err != nil {
		InternalError(c, "failed to list engineers: "+err.Error())
		return
	}
	Success(c, gin.H{"items": engineers})
}

// ListClients GET /api/users/clients
func (h *UserHandler) ListClients(c *gin.Context) {
	clients, err := h.svc.ListClients(c.Request.Context())
	if err != nil {
		InternalError(c, "failed to list clients: "+err.Error())
		return
	}
	Success(c, gin.H{"items": clients})
}
