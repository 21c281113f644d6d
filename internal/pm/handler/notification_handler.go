package handler

import (
	"github.com/buildtrack/buildtrack/internal/pm/service"
	"github.com/gin-gonic/gin"
)

// NotificationHandler 通知接口
type NotificationHandler struct {
	svc *service.NotificationService
}

// NewNotificationHandler 创建通知处理器
func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// List GET /api/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	notifications, err := h.svc.List(c.Request.Context(), GetUserID(c))
	if err != nil {
		InternalError(c, "failed to list notifications: "+err.Error())
		return
	}
	Success(c, gin.H{"items": notifications})
}

// UnreadCount GET /api/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.svc.UnreadCount(c.Request.Context(), GetUserID(c))
	if err != nil {
		InternalError(c, "failed to count unread notifications: "+err.Error())
		return
	}
	Success(c, gin.H{"count": count})
}

// MarkRead PUT /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.svc.MarkRead(c.Request.Context(), c.Param("id"), GetUserID(c)); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}
