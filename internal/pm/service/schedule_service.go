package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/buildtrack/buildtrack/internal/pm/entity"
	"github.com/buildtrack/buildtrack/internal/pm/repository"
	"github.com/buildtrack/buildtrack/internal/pm/sse"
	"github.com/buildtrack/buildtrack/internal/shared/metrics"
	"github.com/buildtrack/buildtrack/internal/shared/workcal"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ScheduleService 排期引擎：阶段的链式创建、进度更新和项目进度聚合
type ScheduleService struct {
	scheduleRepo *repository.ScheduleRepository
	projectRepo  *repository.ProjectRepository
	userRepo     *repository.UserRepository
	holidaySvc   *HolidayService
	notifySvc    *NotificationService
	logger       *zap.Logger
}

// NewScheduleService 创建排期服务
func NewScheduleService(
	scheduleRepo *repository.ScheduleRepository,
	projectRepo *repository.ProjectRepository,
	userRepo *repository.UserRepository,
	holidaySvc *HolidayService,
	notifySvc *NotificationService,
	logger *zap.Logger,
) *ScheduleService {
	return &ScheduleService{
		scheduleRepo: scheduleRepo,
		projectRepo:  projectRepo,
		userRepo:     userRepo,
		holidaySvc:   holidaySvc,
		notifySvc:    notifySvc,
		logger:       logger,
	}
}

// CreatePhaseRequest 创建阶段请求
type CreatePhaseRequest struct {
	ProjectID   string `json:"project_id" binding:"required"`
	PhaseName   string `json:"phase_name" binding:"required"`
	StartDate   string `json:"start_date" binding:"required"`
	Duration    int    `json:"duration" binding:"required"`
	Description string `json:"description"`
}

// UpdatePhaseRequest 更新阶段请求，nil 字段不修改
type UpdatePhaseRequest struct {
	PhaseName   *string `json:"phase_name"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Duration    *int    `json:"duration"`
	Description *string `json:"description"`
}

// CreatePhase 创建排期阶段。项目已有阶段时忽略调用方传入的开始日期，
// 自动衔接到结束日期最晚的阶段之后（链式排期）。
func (s *ScheduleService) CreatePhase(ctx context.Context, req *CreatePhaseRequest) (*entity.SchedulePhase, error) {
	if req.Duration < 1 {
		return nil, fmt.Errorf("%w: duration must be a positive number of working days", ErrInvalidInput)
	}

	project, err := s.projectRepo.FindByID(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}

	// 链式排期：新阶段从上一阶段的结束日期开始
	startDate := req.StartDate
	last, err := s.scheduleRepo.LastByEndDate(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("find last phase: %w", err)
	}
	if last != nil {
		startDate = last.EndDate
	}

	start, err := workcal.ParseDate(startDate)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed start date %q", ErrInvalidInput, startDate)
	}

	holidays, err := s.holidaySvc.CurrentDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load holidays: %w", err)
	}

	endDate := workcal.EndDate(start, req.Duration, holidays)
	metrics.ScheduleResolveCount.Inc()

	phase := &entity.SchedulePhase{
		ID:          uuid.New().String()[:32],
		ProjectID:   req.ProjectID,
		PhaseName:   req.PhaseName,
		StartDate:   startDate,
		Duration:    req.Duration,
		EndDate:     endDate.Format(workcal.DateLayout),
		Description: req.Description,
		Progress:    0,
		Status:      entity.PhaseStatusNotStarted,
		CreatedAt:   time.Now(),
	}
	if err := s.scheduleRepo.Create(ctx, phase); err != nil {
		return nil, fmt.Errorf("create phase: %w", err)
	}

	s.notifyPhaseCreated(ctx, project, phase)
	sse.PublishProjectUpdate(project.ID, "schedule_added")

	return phase, nil
}

// notifyPhaseCreated 通知全体工程师、项目分配的工程师和客户
func (s *ScheduleService) notifyPhaseCreated(ctx context.Context, project *entity.Project, phase *entity.SchedulePhase) {
	s.notifySvc.NotifyRole(ctx, entity.RoleEngineer,
		entity.NotifyTypeScheduleAdded,
		"New Phase Scheduled",
		fmt.Sprintf("Phase '%s' added. Timeline updated.", phase.PhaseName),
		phase.ID,
	)

	for _, engineerID := range project.AssignedEngineers {
		s.notifySvc.Notify(ctx, engineerID,
			entity.NotifyTypeScheduleUpdate,
			"New Schedule Phase Added",
			fmt.Sprintf("Phase '%s' was added in project '%s'", phase.PhaseName, project.Name),
			phase.ID,
		)
	}

	client, err := s.userRepo.FindByEmail(ctx, project.ClientEmail)
	if err != nil {
		s.logger.Warn("Project client not found for schedule notification",
			zap.String("project_id", project.ID),
			zap.String("client_email", project.ClientEmail),
		)
		return
	}
	s.notifySvc.Notify(ctx, client.ID,
		entity.NotifyTypeScheduleUpdate,
		"Project Schedule Updated",
		fmt.Sprintf("A new schedule phase '%s' was added in your project '%s'", phase.PhaseName, project.Name),
		phase.ID,
	)
}

// ListPhases 获取项目阶段列表，按开始日期升序
func (s *ScheduleService) ListPhases(ctx context.Context, projectID string) ([]entity.SchedulePhase, error) {
	return s.scheduleRepo.ListByProject(ctx, projectID)
}

// GetPhase 获取单个阶段
func (s *ScheduleService) GetPhase(ctx context.Context, id string) (*entity.SchedulePhase, error) {
	return s.scheduleRepo.FindByID(ctx, id)
}

// UpdateProgress 更新阶段进度。状态完全由进度派生，更新后重算项目整体进度。
func (s *ScheduleService) UpdateProgress(ctx context.Context, id string, progress float64) error {
	if progress < 0 || progress > 100 {
		return fmt.Errorf("%w: progress must be between 0 and 100", ErrInvalidInput)
	}

	phase, err := s.scheduleRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find phase: %w", err)
	}

	status := statusForProgress(progress)
	if err := s.scheduleRepo.Update(ctx, id, map[string]interface{}{
		"progress": progress,
		"status":   status,
	}); err != nil {
		return fmt.Errorf("update phase progress: %w", err)
	}

	if err := s.recomputeProjectProgress(ctx, phase.ProjectID); err != nil {
		return fmt.Errorf("recompute project progress: %w", err)
	}

	sse.PublishProjectUpdate(phase.ProjectID, "progress_updated")
	return nil
}

// statusForProgress 进度到状态的派生：0 未开始，>=100 已完成，其余进行中
func statusForProgress(progress float64) string {
	switch {
	case progress == 0:
		return entity.PhaseStatusNotStarted
	case progress >= 100:
		return entity.PhaseStatusCompleted
	default:
		return entity.PhaseStatusOngoing
	}
}

// recomputeProjectProgress 项目进度 = 各阶段进度均值（保留2位小数）。
// 没有阶段时不写，保留项目已有的进度。
func (s *ScheduleService) recomputeProjectProgress(ctx context.Context, projectID string) error {
	phases, err := s.scheduleRepo.ListByProject(ctx, projectID)
	if err != nil {
		return err
	}
	if len(phases) == 0 {
		return nil
	}

	var sum float64
	for _, p := range phases {
		sum += p.Progress
	}
	avg := math.Round(sum/float64(len(phases))*100) / 100

	return s.projectRepo.UpdateProgress(ctx, projectID, avg)
}

// UpdatePhase 部分更新阶段字段。删除或修改阶段不会重排后续阶段的开始日期。
func (s *ScheduleService) UpdatePhase(ctx context.Context, id string, req *UpdatePhaseRequest) error {
	updates := map[string]interface{}{}
	if req.PhaseName != nil {
		updates["phase_name"] = *req.PhaseName
	}
	if req.StartDate != nil {
		if _, err := workcal.ParseDate(*req.StartDate); err != nil {
			return fmt.Errorf("%w: malformed start date %q", ErrInvalidInput, *req.StartDate)
		}
		updates["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		if _, err := workcal.ParseDate(*req.EndDate); err != nil {
			return fmt.Errorf("%w: malformed end date %q", ErrInvalidInput, *req.EndDate)
		}
		updates["end_date"] = *req.EndDate
	}
	if req.Duration != nil {
		if *req.Duration < 1 {
			return fmt.Errorf("%w: duration must be a positive number of working days", ErrInvalidInput)
		}
		updates["duration"] = *req.Duration
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) == 0 {
		return nil
	}

	return s.scheduleRepo.Update(ctx, id, updates)
}

// DeletePhase 删除阶段
func (s *ScheduleService) DeletePhase(ctx context.Context, id string) error {
	return s.scheduleRepo.Delete(ctx, id)
}
