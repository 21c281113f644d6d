package handler

import (
	"github.com/buildtrack/buildtrack/internal/pm/service"
	"github.com/gin-gonic/gin"
)

// ScheduleHandler 排期接口
type ScheduleHandler struct {
	svc *service.ScheduleService
}

// NewScheduleHandler 创建排期处理器
func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{svc: svc}
}

// Create POST /api/schedules
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req service.CreatePhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	phase, err := h.svc.CreatePhase(c.Request.Context(), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, phase)
}

// List GET /api/projects/:id/schedules
func (h *ScheduleHandler) List(c *gin.Context) {
	phases, err := h.svc.ListPhases(c.Request.Context(), c.Param("id"))
	if err != nil {
		InternalError(c, "failed to list schedule phases: "+err.Error())
		return
	}
	Success(c, gin.H{"items": phases})
}

// UpdateProgress PUT /api/schedules/:id/progress
func (h *ScheduleHandler) UpdateProgress(c *gin.Context) {
	var req struct {
		Progress *float64 `json:"progress" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.svc.UpdateProgress(c.Request.Context(), c.Param("id"), *req.Progress); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// Update PUT /api/schedules/:id
func (h *ScheduleHandler) Update(c *gin.Context) {
	var req service.UpdatePhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.svc.UpdatePhase(c.Request.Context(), c.Param("id"), &req); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// Delete DELETE /api/schedules/:id
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.svc.DeletePhase(c.Request.Context(), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}
