package repository

import (
	"context"
	"errors"

	"github.com/buildtrack/buildtrack/internal/pm/entity"
	"gorm.io/gorm"
)

// DrawingRepository 图纸仓库
type DrawingRepository struct {
	db *gorm.DB
}

// NewDrawingRepository 创建图纸仓库
func NewDrawingRepository(db *gorm.DB) *DrawingRepository {
	return &DrawingRepository{db: db}
}

// Create 创建图纸记录
func (r *DrawingRepository) Create(ctx context.Context, drawing *entity.Drawing) error {
	return r.db.WithContext(ctx).Create(drawing).Error
}

// FindByID 根据ID查找图纸
func (r *DrawingRepository) FindByID(ctx context.Context, id string) (*entity.Drawing, error) {
	var drawing entity.Drawing
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&drawing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &drawing, nil
}

// List 按条件获取图纸列表
func (r *DrawingRepository) List(ctx context.Context, filters map[string]interface{}) ([]entity.Drawing, error) {
	var drawings []entity.Drawing
	query := r.db.WithContext(ctx).Model(&entity.Drawing{})

	if projectID, ok := filters["project_id"].(string); ok && projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if engineerID, ok := filters["engineer_id"].(string); ok && engineerID != "" {
		query = query.Where("engineer_id = ?", engineerID)
	}
	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}

	err := query.Order("upload_date DESC").Find(&drawings).Error
	return drawings, err
}

// UpdateStatus 更新审批状态和备注
func (r *DrawingRepository) UpdateStatus(ctx context.Context, id, status, comments string) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Drawing{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         status,
			"admin_comments": comments,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByProject 删除项目的全部图纸记录
func (r *DrawingRepository) DeleteByProject(ctx context.Context, projectID string) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&entity.Drawing{}).Error
}
