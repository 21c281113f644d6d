package service

import (
	"github.com/buildtrack/buildtrack/internal/config"
	"github.com/buildtrack/buildtrack/internal/pm/repository"
	"github.com/buildtrack/buildtrack/internal/shared/mq"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services 服务集合
type Services struct {
	Auth         *AuthService
	User         *UserService
	Project      *ProjectService
	Schedule     *ScheduleService
	Holiday      *HolidayService
	Material     *MaterialService
	Drawing      *DrawingService
	Notification *NotificationService
	Stats        *StatsService
	Export       *ExportService
}

// Deps 服务层依赖，publisher/rdb/minioClient 允许为 nil（对应能力降级）
type Deps struct {
	DB          *gorm.DB
	Repos       *repository.Repositories
	RDB         *redis.Client
	Publisher   *mq.Publisher
	MinioClient *minio.Client
	MinioBucket string
	JWT         config.JWTConfig
	Logger      *zap.Logger
}

// NewServices 创建所有服务
func NewServices(deps Deps) *Services {
	notifySvc := NewNotificationService(deps.Repos.Notification, deps.Repos.User, deps.Publisher, deps.RDB, deps.Logger)
	holidaySvc := NewHolidayService(deps.Repos.Holiday, notifySvc)

	return &Services{
		Auth:         NewAuthService(deps.Repos.User, deps.JWT),
		User:         NewUserService(deps.Repos.User),
		Project:      NewProjectService(deps.Repos.Project, deps.Repos.Schedule, deps.Repos.Material, deps.Repos.Drawing, deps.Repos.User, notifySvc, deps.Logger),
		Schedule:     NewScheduleService(deps.Repos.Schedule, deps.Repos.Project, deps.Repos.User, holidaySvc, notifySvc, deps.Logger),
		Holiday:      holidaySvc,
		Material:     NewMaterialService(deps.Repos.Material, deps.Repos.Project, notifySvc),
		Drawing:      NewDrawingService(deps.Repos.Drawing, deps.Repos.Project, notifySvc, deps.MinioClient, deps.MinioBucket, deps.Logger),
		Notification: notifySvc,
		Stats:        NewStatsService(deps.DB, deps.RDB, deps.Logger),
		Export:       NewExportService(deps.Repos.Project, deps.Repos.Schedule),
	}
}
