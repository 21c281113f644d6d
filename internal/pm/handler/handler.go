package handler

import (
	"errors"

	"github.com/buildtrack/buildtrack/internal/pm/repository"
	"github.com/buildtrack/buildtrack/internal/pm/service"
	"github.com/gin-gonic/gin"
)

// Handlers 处理器集合
type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Project      *ProjectHandler
	Schedule     *ScheduleHandler
	Holiday      *HolidayHandler
	Material     *MaterialHandler
	Drawing      *DrawingHandler
	Notification *NotificationHandler
	Stats        *StatsHandler
	SSE          *SSEHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:         NewAuthHandler(svc.Auth),
		User:         NewUserHandler(svc.User),
		Project:      NewProjectHandler(svc.Project, svc.Export),
		Schedule:     NewScheduleHandler(svc.Schedule),
		Holiday:      NewHolidayHandler(svc.Holiday),
		Material:     NewMaterialHandler(svc.Material),
		Drawing:      NewDrawingHandler(svc.Drawing),
		Notification: NewNotificationHandler(svc.Notification),
		Stats:        NewStatsHandler(svc.Stats),
		SSE:          NewSSEHandler(),
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Unauthorized 未授权响应
func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

// Forbidden 禁止访问响应
func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// Fail 按错误类型映射响应码
func Fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "resource not found")
	case errors.Is(err, service.ErrInvalidInput):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrForbidden):
		Forbidden(c, "access denied")
	case errors.Is(err, service.ErrEmailTaken):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		Unauthorized(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetUserName 从上下文获取用户名
func GetUserName(c *gin.Context) string {
	name, _ := c.Get("user_name")
	if n, ok := name.(string); ok {
		return n
	}
	return ""
}

// GetUserEmail 从上下文获取用户邮箱
func GetUserEmail(c *gin.Context) string {
	email, _ := c.Get("user_email")
	if e, ok := email.(string); ok {
		return e
	}
	return ""
}

// GetUserRole 从上下文获取用户角色
func GetUserRole(c *gin.Context) string {
	role, _ := c.Get("role")
	if r, ok := role.(string); ok {
		return r
	}
	return ""
}
