package handler

import (
	"fmt"
	"net/url"

	"github.com/buildtrack/buildtrack/internal/pm/service"
	"github.com/gin-gonic/gin"
)

// ProjectHandler 项目接口
type ProjectHandler struct {
	svc       *service.ProjectService
	exportSvc *service.ExportService
}

// NewProjectHandler 创建项目处理器
func NewProjectHandler(svc *service.ProjectService, exportSvc *service.ExportService) *ProjectHandler {
	return &ProjectHandler{svc: svc, exportSvc: exportSvc}
}

// Create POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req service.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	project, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, project)
}

// List GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.svc.ListForUser(c.Request.Context(), GetUserID(c), GetUserRole(c), GetUserEmail(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"items": projects})
}

// Get GET /api/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.svc.Get(c.Request.Context(), c.Param("id"), GetUserID(c), GetUserRole(c), GetUserEmail(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, project)
}

// Update PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	var req service.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.svc.Update(c.Request.Context(), c.Param("id"), &req); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// AssignEngineers PUT /api/projects/:id/engineers
func (h *ProjectHandler) AssignEngineers(c *gin.Context) {
	var req struct {
		EngineerIDs []string `json:"engineer_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.svc.AssignEngineers(c.Request.Context(), c.Param("id"), req.EngineerIDs); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// UpdateProgress PUT /api/projects/:id/progress（工程师上报整体进度）
func (h *ProjectHandler) UpdateProgress(c *gin.Context) {
	var req struct {
		Progress *float64 `json:"progress" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.svc.UpdateProgress(c.Request.Context(), c.Param("id"), GetUserID(c), *req.Progress); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// Delete DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// CreateTeam POST /api/teams
func (h *ProjectHandler) CreateTeam(c *gin.Context) {
	var req service.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	team, err := h.svc.CreateTeam(c.Request.Context(), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, team)
}

// ListTeams GET /api/teams
func (h *ProjectHandler) ListTeams(c *gin.Context) {
	teams, err := h.svc.ListTeams(c.Request.Context(), c.Query("project_id"))
	if err != nil {
		InternalError(c, "failed to list teams: "+err.Error())
		return
	}
	Success(c, gin.H{"items": teams})
}

// ExportSchedule GET /api/projects/:id/schedules/export
func (h *ProjectHandler) ExportSchedule(c *gin.Context) {
	data, filename, err := h.exportSvc.ProjectSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(filename)))
	c.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
