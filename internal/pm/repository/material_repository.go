package repository

import (
	"context"
	"errors"

	"github.com/buildtrack/buildtrack/internal/pm/entity"
	"gorm.io/gorm"
)

// MaterialRepository 材料申请仓库
type MaterialRepository struct {
	db *gorm.DB
}

// NewMaterialRepository 创建材料申请仓库
func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

// Create 创建材料申请
func (r *MaterialRepository) Create(ctx context.Context, material *entity.Material) error {
	return r.db.WithContext(ctx).Create(material).Error
}

// FindByID 根据ID查找材料申请
func (r *MaterialRepository) FindByID(ctx context.Context, id string) (*entity.Material, error) {
	var material entity.Material
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&material).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &material, nil
}

// List 按条件获取材料申请列表
func (r *MaterialRepository) List(ctx context.Context, filters map[string]interface{}) ([]entity.Material, error) {
	var materials []entity.Material
	query := r.db.WithContext(ctx).Model(&entity.Material{})

	if projectID, ok := filters["project_id"].(string); ok && projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if engineerID, ok := filters["engineer_id"].(string); ok && engineerID != "" {
		query = query.Where("engineer_id = ?", engineerID)
	}
	if projectIDs, ok := filters["project_ids"].([]string); ok {
		query = query.Where("project_id IN ?", projectIDs)
	}

	err := query.Order("created_at DESC").Find(&materials).Error
	return materials, err
}

// UpdateStatus 更新审批状态和备注
func (r *MaterialRepository) UpdateStatus(ctx context.Context, id, status, comments string) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Material{}).
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

// DeleteByProject 删除项目的全部材料申请
func (r *MaterialRepository) DeleteByProject(ctx context.Context, projectID string) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&entity.Material{}).Error
}
