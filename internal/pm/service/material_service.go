package service

import (
	"context"
	"fmt"
	"time"

	"github.com/buildtrack/buildtrack/internal/pm/entity"
	"github.com/buildtrack/buildtrack/internal/pm/repository"
	"github.com/google/uuid"
)

// MaterialService 材料申请服务：工程师提交，管理员审批
type MaterialService struct {
	materialRepo *repository.MaterialRepository
	projectRepo  *repository.ProjectRepository
	notifySvc    *NotificationService
}

// NewMaterialService 创建材料申请服务
func NewMaterialService(
	materialRepo *repository.MaterialRepository,
	projectRepo *repository.ProjectRepository,
	notifySvc *NotificationService,
) *MaterialService {
	return &MaterialService{
		materialRepo: materialRepo,
		projectRepo:  projectRepo,
		notifySvc:    notifySvc,
	}
}

// CreateMaterialRequest 创建材料申请请求
type CreateMaterialRequest struct {
	ProjectID    string `json:"project_id" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Quantity     string `json:"quantity" binding:"required"`
	RequiredDate string `json:"required_date"`
}

// Create 工程师提交材料申请，通知项目创建者
func (s *MaterialService) Create(ctx context.Context, engineerID, engineerName string, req *CreateMaterialRequest) (*entity.Material, error) {
	project, err := s.projectRepo.FindByID(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}

	material := &entity.Material{
		ID:           uuid.New().String()[:32],
		ProjectID:    req.ProjectID,
		EngineerID:   engineerID,
		EngineerName: engineerName,
		Name:         req.Name,
		Quantity:     req.Quantity,
		RequiredDate: req.RequiredDate,
		Status:       entity.ApprovalStatusPending,
		CreatedAt:    time.Now(),
	}
	if err := s.materialRepo.Create(ctx, material); err != nil {
		return nil, fmt.Errorf("create material request: %w", err)
	}

	s.notifySvc.NotifyRole(ctx, entity.RoleAdmin,
		entity.NotifyTypeMaterialRequest,
		"New Material Request",
		fmt.Sprintf("%s requested %s of %s for project '%s'", engineerName, material.Quantity, material.Name, project.Name),
		material.ID,
	)

	return material, nil
}

// ListForUser 按角色返回材料申请：管理员看名下项目的，工程师看自己提交的
func (s *MaterialService) ListForUser(ctx context.Context, userID, role string) ([]entity.Material, error) {
	switch role {
	case entity.RoleAdmin:
		projects, err := s.projectRepo.ListByAdmin(ctx, userID)
		if err != nil {
			return nil, err
		}
		projectIDs := make([]string, 0, len(projects))
		for _, p := range projects {
			projectIDs = append(projectIDs, p.ID)
		}
		if len(projectIDs) == 0 {
			return []entity.Material{}, nil
		}
		return s.materialRepo.List(ctx, map[string]interface{}{"project_ids": projectIDs})
	case entity.RoleEngineer:
		return s.materialRepo.List(ctx, map[string]interface{}{"engineer_id": userID})
	default:
		return nil, fmt.Errorf("%w: role %q cannot list material requests", ErrInvalidInput, role)
	}
}

// ListByProjectForUser 获取指定项目的材料申请，管理员只能查自己的项目，
// 工程师只能查自己在该项目提交的申请
func (s *MaterialService) ListByProjectForUser(ctx context.Context, projectID, userID, role string) ([]entity.Material, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	switch role {
	case entity.RoleAdmin:
		if project.CreatedBy != userID {
			return nil, ErrForbidden
		}
		return s.materialRepo.List(ctx, map[string]interface{}{"project_id": projectID})
	case entity.RoleEngineer:
		return s.materialRepo.List(ctx, map[string]interface{}{
			"project_id":  projectID,
			"engineer_id": userID,
		})
	default:
		return nil, ErrForbidden
	}
}

// Review 管理员审批材料申请并通知申请人
func (s *MaterialService) Review(ctx context.Context, id, status, comments string) error {
	if status != entity.ApprovalStatusApproved && status != entity.ApprovalStatusRejected {
		return fmt.Errorf("%w: status must be Approved or Rejected", ErrInvalidInput)
	}

	material, err := s.materialRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find material request: %w", err)
	}
	if err := s.materialRepo.UpdateStatus(ctx, id, status, comments); err != nil {
		return fmt.Errorf("update material status: %w", err)
	}

	s.notifySvc.Notify(ctx, material.EngineerID,
		entity.NotifyTypeMaterialStatus,
		fmt.Sprintf("Material Request %s", status),
		fmt.Sprintf("Your request for %s has been %s", material.Name, status),
		material.ID,
	)
	return nil
}
