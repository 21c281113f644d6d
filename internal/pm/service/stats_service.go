package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/buildtrack/buildtrack/internal/pm/entity"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StatsService 仪表盘统计服务，直接跑聚合查询，带 redis 短缓存
type StatsService struct {
	db     *gorm.DB
	rdb    *redis.Client
	logger *zap.Logger
}

// NewStatsService 创建统计服务，rdb 可为 nil
func NewStatsService(db *gorm.DB, rdb *redis.Client, logger *zap.Logger) *StatsService {
	return &StatsService{db: db, rdb: rdb, logger: logger}
}

// AdminStats 管理员仪表盘统计
type AdminStats struct {
	TotalProjects    int64 `json:"total_projects"`
	ActiveProjects   int64 `json:"active_projects"`
	TotalEngineers   int64 `json:"total_engineers"`
	TotalClients     int64 `json:"total_clients"`
	PendingDrawings  int64 `json:"pending_drawings"`
	PendingMaterials int64 `json:"pending_materials"`
}

// EngineerStats 工程师仪表盘统计
type EngineerStats struct {
	AssignedProjects int64 `json:"assigned_projects"`
	UploadedDrawings int64 `json:"uploaded_drawings"`
	MaterialRequests int64 `json:"material_requests"`
	PendingApprovals int64 `json:"pending_approvals"`
}

const statsCacheTTL = 30 * time.Second

// AdminDashboard 管理员名下项目及待审批项的统计
func (s *StatsService) AdminDashboard(ctx context.Context, adminID string) (*AdminStats, error) {
	key := "stats:admin:" + adminID
	var cached AdminStats
	if s.getCached(ctx, key, &cached) {
		return &cached, nil
	}

	var stats AdminStats
	if err := s.db.WithContext(ctx).Model(&entity.Project{}).
		Where("created_by_admin = ?", adminID).
		Count(&stats.TotalProjects).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&entity.Project{}).
		Where("created_by_admin = ? AND status = ?", adminID, entity.ProjectStatusInProgress).
		Count(&stats.ActiveProjects).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&entity.User{}).
		Where("role = ?", entity.RoleEngineer).
		Count(&stats.TotalEngineers).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&entity.User{}).
		Where("role = ?", entity.RoleClient).
		Count(&stats.TotalClients).Error; err != nil {
		return nil, err
	}

	projectIDs := s.db.WithContext(ctx).Model(&entity.Project{}).
		Select("id").
		Where("created_by_admin = ?", adminID)
	if err := s.db.WithContext(ctx).Model(&entity.Drawing{}).
		Where("project_id IN (?) AND status = ?", projectIDs, entity.ApprovalStatusPending).
		Count(&stats.PendingDrawings).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&entity.Material{}).
		Where("project_id IN (?) AND status = ?", projectIDs, entity.ApprovalStatusPending).
		Count(&stats.PendingMaterials).Error; err != nil {
		return nil, err
	}

	s.setCached(ctx, key, &stats)
	return &stats, nil
}

// EngineerDashboard 工程师名下项目、图纸和材料申请的统计
func (s *StatsService) EngineerDashboard(ctx context.Context, engineerID string) (*EngineerStats, error) {
	key := "stats:engineer:" + engineerID
	var cached EngineerStats
	if s.getCached(ctx, key, &cached) {
		return &cached, nil
	}

	var stats EngineerStats
	member, err := json.Marshal([]string{engineerID})
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&entity.Project{}).
		Where("assigned_engineers @> ?", string(member)).
		Count(&stats.AssignedProjects).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&entity.Drawing{}).
		Where("engineer_id = ?", engineerID).
		Count(&stats.UploadedDrawings).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&entity.Material{}).
		Where("engineer_id = ?", engineerID).
		Count(&stats.MaterialRequests).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&entity.Drawing{}).
		Where("engineer_id = ? AND status = ?", engineerID, entity.ApprovalStatusPending).
		Count(&stats.PendingApprovals).Error; err != nil {
		return nil, err
	}

	s.setCached(ctx, key, &stats)
	return &stats, nil
}

func (s *StatsService) getCached(ctx context.Context, key string, dest interface{}) bool {
	if s.rdb == nil {
		return false
	}
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (s *StatsService) setCached(ctx context.Context, key string, value interface{}) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, data, statsCacheTTL).Err(); err != nil {
		s.logger.Warn("Failed to cache dashboard stats", zap.String("key", key), zap.Error(err))
	}
}
