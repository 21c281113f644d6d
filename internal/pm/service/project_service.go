package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/buildtrack/buildtrack/internal/pm/entity"
	"github.com/buildtrack/buildtrack/internal/pm/repository"
	"github.com/buildtrack/buildtrack/internal/pm/sse"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProjectService 项目服务：创建、按角色过滤的列表、分配工程师、级联删除
type ProjectService struct {
	projectRepo  *repository.ProjectRepository
	scheduleRepo *repository.ScheduleRepository
	materialRepo *repository.MaterialRepository
	drawingRepo  *repository.DrawingRepository
	userRepo     *repository.UserRepository
	notifySvc    *NotificationService
	logger       *zap.Logger
}

// NewProjectService 创建项目服务
func NewProjectService(
	projectRepo *repository.ProjectRepository,
	scheduleRepo *repository.ScheduleRepository,
	materialRepo *repository.MaterialRepository,
	drawingRepo *repository.DrawingRepository,
	userRepo *repository.UserRepository,
	notifySvc *NotificationService,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projectRepo:  projectRepo,
		scheduleRepo: scheduleRepo,
		materialRepo: materialRepo,
		drawingRepo:  drawingRepo,
		userRepo:     userRepo,
		notifySvc:    notifySvc,
		logger:       logger,
	}
}

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Name              string   `json:"name" binding:"required"`
	ClientEmail       string   `json:"client_email" binding:"required,email"`
	ClientName        string   `json:"client_name"`
	Location          string   `json:"location"`
	StartDate         string   `json:"start_date"`
	EndDate           string   `json:"end_date"`
	Budget            float64  `json:"budget"`
	AssignedEngineers []string `json:"assigned_engineers"`
}

// UpdateProjectRequest 更新项目请求，nil 字段不修改
type UpdateProjectRequest struct {
	Name      *string  `json:"name"`
	Location  *string  `json:"location"`
	StartDate *string  `json:"start_date"`
	EndDate   *string  `json:"end_date"`
	Budget    *float64 `json:"budget"`
	Status    *string  `json:"status"`
}

// Create 创建项目并通知分配的工程师和客户。客户账号必须已注册。
func (s *ProjectService) Create(ctx context.Context, adminID string, req *CreateProjectRequest) (*entity.Project, error) {
	client, err := s.userRepo.FindByEmail(ctx, req.ClientEmail)
	if err != nil {
		return nil, fmt.Errorf("find client: %w", err)
	}

	clientName := req.ClientName
	if clientName == "" {
		clientName = client.Name
	}

	project := &entity.Project{
		ID:                uuid.New().String()[:32],
		Name:              req.Name,
		ClientEmail:       req.ClientEmail,
		ClientName:        clientName,
		Location:          req.Location,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		Budget:            req.Budget,
		Status:            entity.ProjectStatusPlanning,
		AssignedEngineers: entity.StringList(req.AssignedEngineers),
		Progress:          0,
		CreatedBy:         adminID,
		CreatedAt:         time.Now(),
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	for _, engineerID := range project.AssignedEngineers {
		s.notifySvc.Notify(ctx, engineerID,
			entity.NotifyTypeScheduleUpdate,
			"Assigned to Project",
			fmt.Sprintf("You have been assigned to project '%s'", project.Name),
			project.ID,
		)
	}
	s.notifySvc.Notify(ctx, client.ID,
		entity.NotifyTypeScheduleUpdate,
		"Project Created",
		fmt.Sprintf("Your project '%s' has been created", project.Name),
		project.ID,
	)

	return project, nil
}

// UpdateProgress 工程师上报项目整体进度，仅限分配到该项目的工程师
func (s *ProjectService) UpdateProgress(ctx context.Context, id, engineerID string, progress float64) error {
	if progress < 0 || progress > 100 {
		return fmt.Errorf("%w: progress must be between 0 and 100", ErrInvalidInput)
	}

	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	assigned := false
	for _, eid := range project.AssignedEngineers {
		if eid == engineerID {
			assigned = true
			break
		}
	}
	if !assigned {
		return ErrForbidden
	}

	if err := s.projectRepo.UpdateProgress(ctx, id, progress); err != nil {
		return fmt.Errorf("update project progress: %w", err)
	}

	s.notifySvc.Notify(ctx, project.CreatedBy,
		entity.NotifyTypeScheduleUpdate,
		"Project Progress Updated",
		fmt.Sprintf("Progress of project '%s' was updated to %.0f%%", project.Name, progress),
		project.ID,
	)
	sse.PublishProjectUpdate(id, "progress_updated")
	return nil
}

// ListForUser 按角色返回项目：管理员看自己创建的，工程师看分配的，客户按邮箱匹配
func (s *ProjectService) ListForUser(ctx context.Context, userID, role, email string) ([]entity.Project, error) {
	switch role {
	case entity.RoleAdmin:
		return s.projectRepo.ListByAdmin(ctx, userID)
	case entity.RoleEngineer:
		return s.projectRepo.ListByEngineer(ctx, userID)
	case entity.RoleClient:
		return s.projectRepo.ListByClientEmail(ctx, email)
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
}

// Get 获取项目，校验当前用户的访问权
func (s *ProjectService) Get(ctx context.Context, id, userID, role, email string) (*entity.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canAccess(project, userID, role, email) {
		return nil, ErrForbidden
	}
	return project, nil
}

func (s *ProjectService) canAccess(project *entity.Project, userID, role, email string) bool {
	switch role {
	case entity.RoleAdmin:
		return project.CreatedBy == userID
	case entity.RoleEngineer:
		for _, id := range project.AssignedEngineers {
			if id == userID {
				return true
			}
		}
		return false
	case entity.RoleClient:
		return project.ClientEmail == email
	}
	return false
}

// Update 更新项目字段
func (s *ProjectService) Update(ctx context.Context, id string, req *UpdateProjectRequest) error {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		updates["end_date"] = *req.EndDate
	}
	if req.Budget != nil {
		updates["budget"] = *req.Budget
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if len(updates) == 0 {
		return nil
	}
	return s.projectRepo.Update(ctx, id, updates)
}

// AssignEngineers 整体覆盖工程师分配并通知新名单
func (s *ProjectService) AssignEngineers(ctx context.Context, id string, engineerIDs []string) error {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.projectRepo.AssignEngineers(ctx, id, engineerIDs); err != nil {
		return err
	}
	for _, engineerID := range engineerIDs {
		s.notifySvc.Notify(ctx, engineerID,
			entity.NotifyTypeScheduleUpdate,
			"Assigned to Project",
			fmt.Sprintf("You have been assigned to project '%s'", project.Name),
			project.ID,
		)
	}
	sse.PublishProjectUpdate(id, "engineers_assigned")
	return nil
}

// Delete 删除项目及其排期、材料申请、图纸和团队
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if _, err := s.projectRepo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.scheduleRepo.DeleteByProject(ctx, id); err != nil {
		return fmt.Errorf("delete schedules: %w", err)
	}
	if err := s.materialRepo.DeleteByProject(ctx, id); err != nil {
		return fmt.Errorf("delete materials: %w", err)
	}
	if err := s.drawingRepo.DeleteByProject(ctx, id); err != nil {
		return fmt.Errorf("delete drawings: %w", err)
	}
	if err := s.projectRepo.DeleteTeamsByProject(ctx, id); err != nil {
		return fmt.Errorf("delete teams: %w", err)
	}
	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// CreateTeamRequest 创建团队请求
type CreateTeamRequest struct {
	Name        string   `json:"name" binding:"required"`
	ProjectID   string   `json:"project_id" binding:"required"`
	EngineerIDs []string `json:"engineer_ids"`
}

// CreateTeam 创建项目团队并通知成员
func (s *ProjectService) CreateTeam(ctx context.Context, req *CreateTeamRequest) (*entity.Team, error) {
	project, err := s.projectRepo.FindByID(ctx, req.ProjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: project %s not found", ErrInvalidInput, req.ProjectID)
		}
		return nil, err
	}

	team := &entity.Team{
		ID:          uuid.New().String()[:32],
		Name:        req.Name,
		ProjectID:   req.ProjectID,
		EngineerIDs: entity.StringList(req.EngineerIDs),
		CreatedAt:   time.Now(),
	}
	if err := s.projectRepo.CreateTeam(ctx, team); err != nil {
		return nil, fmt.Errorf("create team: %w", err)
	}

	for _, engineerID := range team.EngineerIDs {
		s.notifySvc.Notify(ctx, engineerID,
			entity.NotifyTypeScheduleUpdate,
			"Added to Team",
			fmt.Sprintf("You have been added to team '%s' for project '%s'", team.Name, project.Name),
			team.ID,
		)
	}
	return team, nil
}

// ListTeams 获取团队列表
func (s *ProjectService) ListTeams(ctx context.Context, projectID string) ([]entity.Team, error) {
	return s.projectRepo.ListTeams(ctx, projectID)
}
