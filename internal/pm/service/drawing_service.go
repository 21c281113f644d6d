package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/buildtrack/buildtrack/internal/pm/entity"
	"github.com/buildtrack/buildtrack/internal/pm/repository"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// DrawingService 图纸服务：文件本体走对象存储，元数据落库
type DrawingService struct {
	drawingRepo *repository.DrawingRepository
	projectRepo *repository.ProjectRepository
	notifySvc   *NotificationService
	minioClient *minio.Client
	bucket      string
	logger      *zap.Logger
}

// NewDrawingService 创建图纸服务
func NewDrawingService(
	drawingRepo *repository.DrawingRepository,
	projectRepo *repository.ProjectRepository,
	notifySvc *NotificationService,
	minioClient *minio.Client,
	bucket string,
	logger *zap.Logger,
) *DrawingService {
	return &DrawingService{
		drawingRepo: drawingRepo,
		projectRepo: projectRepo,
		notifySvc:   notifySvc,
		minioClient: minioClient,
		bucket:      bucket,
		logger:      logger,
	}
}

// 允许上传的图纸文件类型
var allowedDrawingTypes = map[string]bool{
	"application/pdf":          true,
	"image/png":                true,
	"image/jpeg":               true,
	"image/vnd.dwg":            true,
	"image/vnd.dxf":            true,
	"application/acad":         true,
	"application/octet-stream": true,
}

// Upload 工程师上传图纸：先传对象存储，再写元数据，最后通知项目创建者
func (s *DrawingService) Upload(ctx context.Context, engineerID, engineerName, projectID, fileName, contentType string, reader io.Reader, size int64) (*entity.Drawing, error) {
	if !allowedDrawingTypes[contentType] {
		return nil, fmt.Errorf("%w: unsupported file type %q", ErrInvalidInput, contentType)
	}

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}

	id := uuid.New().String()[:32]
	objectKey := fmt.Sprintf("drawings/%s/%s%s", projectID, id, path.Ext(fileName))

	if _, err := s.minioClient.PutObject(ctx, s.bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return nil, fmt.Errorf("upload drawing object: %w", err)
	}

	drawing := &entity.Drawing{
		ID:           id,
		ProjectID:    projectID,
		EngineerID:   engineerID,
		EngineerName: engineerName,
		ObjectKey:    objectKey,
		FileName:     fileName,
		ContentType:  contentType,
		FileSize:     size,
		Status:       entity.ApprovalStatusPending,
		UploadDate:   time.Now(),
	}
	if err := s.drawingRepo.Create(ctx, drawing); err != nil {
		// 元数据写入失败时回收已上传的对象
		if rmErr := s.minioClient.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{}); rmErr != nil {
			s.logger.Error("Failed to remove orphaned drawing object",
				zap.String("object_key", objectKey),
				zap.Error(rmErr),
			)
		}
		return nil, fmt.Errorf("create drawing record: %w", err)
	}

	s.notifySvc.Notify(ctx, project.CreatedBy,
		entity.NotifyTypeDrawingUpload,
		"New Drawing Uploaded",
		fmt.Sprintf("%s uploaded drawing '%s' for project '%s'", engineerName, fileName, project.Name),
		drawing.ID,
	)

	return drawing, nil
}

// ListForUser 按角色返回图纸：管理员看名下项目的，工程师看自己上传的，客户看本项目已批准的
func (s *DrawingService) ListForUser(ctx context.Context, userID, role, email string) ([]entity.Drawing, error) {
	switch role {
	case entity.RoleAdmin:
		projects, err := s.projectRepo.ListByAdmin(ctx, userID)
		if err != nil {
			return nil, err
		}
		var drawings []entity.Drawing
		for _, p := range projects {
			list, err := s.drawingRepo.List(ctx, map[string]interface{}{"project_id": p.ID})
			if err != nil {
				return nil, err
			}
			drawings = append(drawings, list...)
		}
		return drawings, nil
	case entity.RoleEngineer:
		return s.drawingRepo.List(ctx, map[string]interface{}{"engineer_id": userID})
	case entity.RoleClient:
		projects, err := s.projectRepo.ListByClientEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		var drawings []entity.Drawing
		for _, p := range projects {
			list, err := s.drawingRepo.List(ctx, map[string]interface{}{
				"project_id": p.ID,
				"status":     entity.ApprovalStatusApproved,
			})
			if err != nil {
				return nil, err
			}
			drawings = append(drawings, list...)
		}
		return drawings, nil
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
}

// Download 获取图纸文件流，调用方负责 Close。访问权与列表一致：
// 管理员限本人项目，工程师限本人上传，客户限本项目已批准的图纸。
func (s *DrawingService) Download(ctx context.Context, id, userID, role, email string) (*entity.Drawing, io.ReadCloser, error) {
	drawing, err := s.drawingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("find drawing: %w", err)
	}

	project, err := s.projectRepo.FindByID(ctx, drawing.ProjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("find project: %w", err)
	}
	switch role {
	case entity.RoleAdmin:
		if project.CreatedBy != userID {
			return nil, nil, ErrForbidden
		}
	case entity.RoleEngineer:
		if drawing.EngineerID != userID {
			return nil, nil, ErrForbidden
		}
	case entity.RoleClient:
		if project.ClientEmail != email || drawing.Status != entity.ApprovalStatusApproved {
			return nil, nil, ErrForbidden
		}
	default:
		return nil, nil, ErrForbidden
	}

	object, err := s.minioClient.GetObject(ctx, s.bucket, drawing.ObjectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("get drawing object: %w", err)
	}
	return drawing, object, nil
}

// Review 管理员审批图纸并通知上传人
func (s *DrawingService) Review(ctx context.Context, id, status, comments string) error {
	if status != entity.ApprovalStatusApproved && status != entity.ApprovalStatusRejected {
		return fmt.Errorf("%w: status must be Approved or Rejected", ErrInvalidInput)
	}

	drawing, err := s.drawingRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find drawing: %w", err)
	}
	if err := s.drawingRepo.UpdateStatus(ctx, id, status, comments); err != nil {
		return fmt.Errorf("update drawing status: %w", err)
	}

	s.notifySvc.Notify(ctx, drawing.EngineerID,
		entity.NotifyTypeDrawingStatus,
		fmt.Sprintf("Drawing %s", status),
		fmt.Sprintf("Your drawing '%s' has been %s", drawing.FileName, status),
		drawing.ID,
	)
	return nil
}
