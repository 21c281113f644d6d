package handler

import (
	"fmt"
	"net/url"

	"github.com/buildtrack/buildtrack/internal/pm/service"
	"github.com/gin-gonic/gin"
)

// 图纸上传大小上限
const maxDrawingSize = 50 << 20

// DrawingHandler 图纸接口
type DrawingHandler struct {
	svc *service.DrawingService
}

// NewDrawingHandler 创建图纸处理器
func NewDrawingHandler(svc *service.DrawingService) *DrawingHandler {
	return &DrawingHandler{svc: svc}
}

// Upload POST /api/drawings（multipart：file + project_id）
func (h *DrawingHandler) Upload(c *gin.Context) {
	projectID := c.PostForm("project_id")
	if projectID == "" {
		BadRequest(c, "project_id is required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "file is required: "+err.Error())
		return
	}
	if fileHeader.Size > maxDrawingSize {
		BadRequest(c, "file exceeds the 50MB limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		InternalError(c, "failed to open uploaded file: "+err.Error())
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	drawing, err := h.svc.Upload(c.Request.Context(),
		GetUserID(c), GetUserName(c), projectID,
		fileHeader.Filename, contentType, file, fileHeader.Size,
	)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, drawing)
}

// List GET /api/drawings
func (h *DrawingHandler) List(c *gin.Context) {
	drawings, err := h.svc.ListForUser(c.Request.Context(), GetUserID(c), GetUserRole(c), GetUserEmail(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"items": drawings})
}

// Download GET /api/drawings/:id/file
func (h *DrawingHandler) Download(c *gin.Context) {
	drawing, object, err := h.svc.Download(c.Request.Context(), c.Param("id"),
		GetUserID(c), GetUserRole(c), GetUserEmail(c))
	if err != nil {
		Fail(c, err)
		return
	}
	defer object.Close()

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(drawing.FileName)))
	c.DataFromReader(200, drawing.FileSize, drawing.ContentType, object, nil)
}

// Review PUT /api/drawings/:id/status
func (h *DrawingHandler) Review(c *gin.Context) {
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
