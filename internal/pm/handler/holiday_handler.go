package handler

import (
	"github.com/buildtrack/buildtrack/internal/pm/service"
	"github.com/gin-gonic/gin"
)

// HolidayHandler 节假日接口
type HolidayHandler struct {
	svc *service.HolidayService
}

// NewHolidayHandler 创建节假日处理器
func NewHolidayHandler(svc *service.HolidayService) *HolidayHandler {
	return &HolidayHandler{svc: svc}
}

// Create POST /api/holidays
func (h *HolidayHandler) Create(c *gin.Context) {
	var req service.CreateHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	holiday, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, holiday)
}

// List GET /api/holidays
func (h *HolidayHandler) List(c *gin.Context) {
	holidays, err := h.svc.List(c.Request.Context())
	if err != nil {
		InternalError(c, "failed to list holidays: "+err.Error())
		return
	}
	Success(c, gin.H{"items": holidays})
}

// Delete DELETE /api/holidays/:id
func (h *HolidayHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}
