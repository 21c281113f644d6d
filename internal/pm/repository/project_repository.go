package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/buildtrack/buildtrack/internal/pm/entity"
	"gorm.io/gorm"
)

// ProjectRepository 项目仓库
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository 创建项目仓库
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create 创建项目
func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// FindByID 根据ID查找项目
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*entity.Project, error) {
	var project entity.Project
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &project, nil
}

// ListByAdmin 获取管理员创建的项目
func (r *ProjectRepository) ListByAdmin(ctx context.Context, adminID string) ([]entity.Project, error) {
	var projects []entity.Project
	err := r.db.WithContext(ctx).
		Where("created_by_admin = ?", adminID).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

// ListByEngineer 获取分配给工程师的项目
func (r *ProjectRepository) ListByEngineer(ctx context.Context, engineerID string) ([]entity.Project, error) {
	member, err := json.Marshal([]string{engineerID})
	if err != nil {
		return nil, err
	}
	var projects []entity.Project
	err = r.db.WithContext(ctx).
		Where("assigned_engineers @> ?", string(member)).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

// ListByClientEmail 获取客户名下的项目
func (r *ProjectRepository) ListByClientEmail(ctx context.Context, email string) ([]entity.Project, error) {
	var projects []entity.Project
	err := r.db.WithContext(ctx).
		Where("client_email = ?", email).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

// Update 更新项目字段
func (r *ProjectRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Project{}).
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

// UpdateProgress 更新项目整体进度（进度聚合器写入口）
func (r *ProjectRepository) UpdateProgress(ctx context.Context, id string, progress float64) error {
	return r.db.WithContext(ctx).
		Model(&entity.Project{}).
		Where("id = ?", id).
		Update("progress", progress).Error
}

// AssignEngineers 整体覆盖项目的工程师分配
func (r *ProjectRepository) AssignEngineers(ctx context.Context, id string, engineerIDs []string) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Project{}).
		Where("id = ?", id).
		Update("assigned_engineers", entity.StringList(engineerIDs))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete 删除项目
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Project{}).Error
}

// CreateTeam 创建项目团队
func (r *ProjectRepository) CreateTeam(ctx context.Context, team *entity.Team) error {
	return r.db.WithContext(ctx).Create(team).Error
}

// ListTeams 获取团队列表，projectID 为空时返回全部
func (r *ProjectRepository) ListTeams(ctx context.Context, projectID string) ([]entity.Team, error) {
	var teams []entity.Team
	query := r.db.WithContext(ctx).Model(&entity.Team{})
	if projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	err := query.Order("created_at DESC").Find(&teams).Error
	return teams, err
}

// DeleteTeamsByProject 删除项目下的全部团队（项目级联删除用）
func (r *ProjectRepository) DeleteTeamsByProject(ctx context.Context, projectID string) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&entity.Team{}).Error
}
