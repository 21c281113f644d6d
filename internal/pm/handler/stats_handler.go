package handler

import (
	"github.com/buildtrack/buildtrack/internal/pm/service"
	"github.com/gin-gonic/gin"
)

// StatsHandler 仪表盘统计接口
type StatsHandler struct {
	svc *service.StatsService
}

// NewStatsHandler 创建统计处理器
func NewStatsHandler(svc *service.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// AdminDashboard GET /api/stats/admin
func (h *StatsHandler) AdminDashboard(c *gin.Context) {
	stats, err := h.svc.AdminDashboard(c.Request.Context(), GetUserID(c))
	if err != nil {
		InternalError(c, "failed to load dashboard stats: "+err.Error())
		return
	}
	Success(c, stats)
}

// EngineerDashboard GET /api/stats/engineer
func (h *StatsHandler) EngineerDashboard(c *gin.Context) {
	stats, err := h.svc.EngineerDashboard(c.Request.Context(), GetUserID(c))
	if err != nil {
		InternalError(c, "failed to load dashboard stats: "+err.Error())
		return
	}
	Success(c, stats)
}
