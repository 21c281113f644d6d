package handler

import (
	"github.com/buildtrack/buildtrack/internal/pm/service"
	"github.com/gin-gonic/gin"
)

// MaterialHandler 材料申请接口
type MaterialHandler struct {
	svc *service.MaterialService
}

// NewMaterialHandler 创建材料申请处理器
func NewMaterialHandler(svc *service.MaterialService) *MaterialHandler {
	return &MaterialHandler{svc: svc}
}

// Create POST /api/materials
func (h *MaterialHandler) Create(c *gin.Context) {
	var req service.CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	material, err := h.svc.Create(c.Request.Context(), GetUserID(c), GetUserName(c), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, material)
}

// List GET /api/materials
func (h *MaterialHandler) List(c *gin.Context) {
	if projectID := c.Query("project_id"); projectID != "" {
		materials, err := h.svc.ListByProjectForUser(c.Request.Context(), projectID, GetUserID(c), GetUserRole(c))
		if err != nil {
			Fail(c, err)
			return
		}
		Success(c, gin.H{"items": materials})
		return
	}

	materials, err := h.svc.ListForUser(c.Request.Context(), GetUserID(c), GetUserRole(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"items": materials})
}

// Review PUT /api/materials/:id/status
func (h *MaterialHandler) Review(c *gin.Context) {
	var req struct {
		Status   string `json:"status" binding:"required"`
		Comments string `json:"comments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.svc.Review(c.Request.Context(), c.Param("id"), req.Status, req.Comments); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}
