package repository

import (
	"context"
	"errors"

	"github.com/buildtrack/buildtrack/internal/pm/entity"
	"gorm.io/gorm"
)

// ScheduleRepository 排期阶段仓库
type ScheduleRepository struct {
	db *gorm.DB
}

// NewScheduleRepository 创建排期仓库
func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Create 创建阶段
func (r *ScheduleRepository) Create(ctx context.Context, phase *entity.SchedulePhase) error {
	return r.db.WithContext(ctx).Create(phase).Error
}

// FindByID 根据ID查找阶段
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*entity.SchedulePhase, error) {
	var phase entity.SchedulePhase
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&phase).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &phase, nil
}

// ListByProject 获取项目的全部阶段，按开始日期升序（展示顺序）
func (r *ScheduleRepository) ListByProject(ctx context.Context, projectID string) ([]entity.SchedulePhase, error) {
	var phases []entity.SchedulePhase
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("start_date ASC").
		Find(&phases).Error
	return phases, err
}

// LastByEndDate 获取项目中结束日期最晚的阶段（链式排期的锚点）。
// 结束日期相同时取创建时间最晚的，保证结果确定。没有阶段时返回 nil。
func (r *ScheduleRepository) LastByEndDate(ctx context.Context, projectID string) (*entity.SchedulePhase, error) {
	var phase entity.SchedulePhase
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("end_date DESC, created_at DESC").
		First(&phase).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &phase, nil
}

// Update 更新阶段字段
func (r *ScheduleRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&entity.SchedulePhase{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete 删除阶段
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.SchedulePhase{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByProject 删除项目的全部阶段（项目级联删除用）
func (r *ScheduleRepository) DeleteByProject(ctx context.Context, projectID string) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&entity.SchedulePhase{}).Error
}
