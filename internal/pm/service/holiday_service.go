package service

import (
	"context"
	"fmt"
	"time"

	"github.com/buildtrack/buildtrack/internal/pm/entity"
	"github.com/buildtrack/buildtrack/internal/pm/repository"
	"github.com/buildtrack/buildtrack/internal/shared/workcal"
	"github.com/google/uuid"
)

// HolidayService 节假日服务。所有读路径先执行过期清理，
// 过期节假日即使从未被显式删除也不会影响排期计算。
type HolidayService struct {
	holidayRepo *repository.HolidayRepository
	notifySvc   *NotificationService
}

// NewHolidayService 创建节假日服务
func NewHolidayService(holidayRepo *repository.HolidayRepository, notifySvc *NotificationService) *HolidayService {
	return &HolidayService{
		holidayRepo: holidayRepo,
		notifySvc:   notifySvc,
	}
}

// CreateHolidayRequest 创建节假日请求
type CreateHolidayRequest struct {
	Name string `json:"name" binding:"required"`
	Date string `json:"date" binding:"required"`
}

// Create 创建节假日并通知全体工程师。同一天允许多条记录。
func (s *HolidayService) Create(ctx context.Context, req *CreateHolidayRequest) (*entity.Holiday, error) {
	if _, err := workcal.ParseDate(req.Date); err != nil {
		return nil, fmt.Errorf("%w: malformed date %q", ErrInvalidInput, req.Date)
	}

	holiday := &entity.Holiday{
		ID:        uuid.New().String()[:32],
		Name:      req.Name,
		Date:      req.Date,
		CreatedAt: time.Now(),
	}
	if err := s.holidayRepo.Create(ctx, holiday); err != nil {
		return nil, fmt.Errorf("create holiday: %w", err)
	}

	s.notifySvc.NotifyRole(ctx, entity.RoleEngineer,
		entity.NotifyTypeHolidayAdded,
		"New Holiday Added",
		fmt.Sprintf("Holiday declared on %s. Scheduling will skip this date.", holiday.Date),
		holiday.ID,
	)

	return holiday, nil
}

// List 先清理过期节假日，再返回剩余的
func (s *HolidayService) List(ctx context.Context) ([]entity.Holiday, error) {
	if err := s.Cleanup(ctx); err != nil {
		return nil, err
	}
	return s.holidayRepo.List(ctx)
}

// Delete 删除节假日
func (s *HolidayService) Delete(ctx context.Context, id string) error {
	return s.holidayRepo.Delete(ctx, id)
}

// Cleanup 删除日期已经过去的节假日
func (s *HolidayService) Cleanup(ctx context.Context) error {
	if err := s.holidayRepo.DeleteExpired(ctx, workcal.Today()); err != nil {
		return fmt.Errorf("cleanup holidays: %w", err)
	}
	return nil
}

// CurrentDates 清理后返回当前有效的节假日日期集合（排期计算用）
func (s *HolidayService) CurrentDates(ctx context.Context) (map[string]bool, error) {
	holidays, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	dates := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		dates[h.Date] = true
	}
	return dates, nil
}
