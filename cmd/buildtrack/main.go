package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/buildtrack/buildtrack/internal/config"
	"github.com/buildtrack/buildtrack/internal/middleware"
	"github.com/buildtrack/buildtrack/internal/pm/entity"
	"github.com/buildtrack/buildtrack/internal/pm/handler"
	"github.com/buildtrack/buildtrack/internal/pm/repository"
	"github.com/buildtrack/buildtrack/internal/pm/service"
	"github.com/buildtrack/buildtrack/internal/shared/mq"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting buildtrack service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Project{},
		&entity.Team{},
		&entity.SchedulePhase{},
		&entity.Holiday{},
		&entity.Material{},
		&entity.Drawing{},
		&entity.Notification{},
	); err != nil {
		zapLogger.Fatal("AutoMigrate failed", zap.Error(err))
	}

	// Redis 缓存（未读数、仪表盘统计），连不上时降级为直查数据库
	rdb := initRedis(cfg.Redis)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		zapLogger.Warn("Redis unavailable, caching disabled", zap.Error(err))
		rdb = nil
	}

	// MinIO 对象存储（图纸文件）
	minioClient, err := initMinIO(cfg.MinIO)
	if err != nil {
		zapLogger.Fatal("Failed to init object storage", zap.Error(err))
	}

	// RabbitMQ 邮件中继，URL 为空时禁用
	var publisher *mq.Publisher
	if cfg.RabbitMQ.URL != "" {
		publisher, err = mq.NewPublisher(cfg.RabbitMQ.URL)
		if err != nil {
			zapLogger.Warn("RabbitMQ unavailable, mail relay disabled", zap.Error(err))
		} else {
			defer publisher.Close()
		}
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(service.Deps{
		DB:          db,
		Repos:       repos,
		RDB:         rdb,
		Publisher:   publisher,
		MinioClient: minioClient,
		MinioBucket: cfg.MinIO.Bucket,
		JWT:         cfg.JWT,
		Logger:      zapLogger,
	})
	handlers := handler.NewHandlers(services)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func initMinIO(cfg config.MinIOConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return client, nil
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": Version})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// 公开接口
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
	}

	// 需要登录
	authed := api.Group("", middleware.JWTAuth(cfg.JWT.Secret))
	{
		authed.GET("/auth/me", h.Auth.Me)

		authed.GET("/sse/events", h.SSE.Stream)

		notifications := authed.Group("/notifications")
		{
			notifications.GET("", h.Notification.List)
			notifications.GET("/unread-count", h.Notification.UnreadCount)
			notifications.PUT("/:id/read", h.Notification.MarkRead)
		}

		projects := authed.Group("/projects")
		{
			projects.GET("", h.Project.List)
			projects.GET("/:id", h.Project.Get)
			projects.GET("/:id/schedules", h.Schedule.List)
			projects.POST("", middleware.RequireRole(entity.RoleAdmin), h.Project.Create)
			projects.PUT("/:id", middleware.RequireRole(entity.RoleAdmin), h.Project.Update)
			projects.PUT("/:id/engineers", middleware.RequireRole(entity.RoleAdmin), h.Project.AssignEngineers)
			projects.PUT("/:id/progress", middleware.RequireRole(entity.RoleEngineer), h.Project.UpdateProgress)
			projects.DELETE("/:id", middleware.RequireRole(entity.RoleAdmin), h.Project.Delete)
			projects.GET("/:id/schedules/export", middleware.RequireRole(entity.RoleAdmin, entity.RoleEngineer), h.Project.ExportSchedule)
		}

		teams := authed.Group("/teams", middleware.RequireRole(entity.RoleAdmin))
		{
			teams.POST("", h.Project.CreateTeam)
			teams.GET("", h.Project.ListTeams)
		}

		schedules := authed.Group("/schedules")
		{
			schedules.POST("", middleware.RequireRole(entity.RoleAdmin), h.Schedule.Create)
			schedules.PUT("/:id/progress", middleware.RequireRole(entity.RoleAdmin, entity.RoleEngineer), h.Schedule.UpdateProgress)
			schedules.PUT("/:id", middleware.RequireRole(entity.RoleAdmin), h.Schedule.Update)
			schedules.DELETE("/:id", middleware.RequireRole(entity.RoleAdmin), h.Schedule.Delete)
		}

		holidays := authed.Group("/holidays")
		{
			holidays.GET("", h.Holiday.List)
			holidays.POST("", middleware.RequireRole(entity.RoleAdmin), h.Holiday.Create)
			holidays.DELETE("/:id", middleware.RequireRole(entity.RoleAdmin), h.Holiday.Delete)
		}

		materials := authed.Group("/materials")
		{
			materials.GET("", middleware.RequireRole(entity.RoleAdmin, entity.RoleEngineer), h.Material.List)
			materials.POST("", middleware.RequireRole(entity.RoleEngineer), h.Material.Create)
			materials.PUT("/:id/status", middleware.RequireRole(entity.RoleAdmin), h.Material.Review)
		}

		drawings := authed.Group("/drawings")
		{
			drawings.GET("", h.Drawing.List)
			drawings.GET("/:id/file", h.Drawing.Download)
			drawings.POST("", middleware.RequireRole(entity.RoleEngineer), h.Drawing.Upload)
			drawings.PUT("/:id/status", middleware.RequireRole(entity.RoleAdmin), h.Drawing.Review)
		}

		users := authed.Group("/users", middleware.RequireRole(entity.RoleAdmin))
		{
			users.GET("", h.User.List)
			users.GET("/engineers", h.User.ListEngineers)
			users.GET("/clients", h.User.ListClients)
		}

		stats := authed.Group("/stats")
		{
			stats.GET("/admin", middleware.RequireRole(entity.RoleAdmin), h.Stats.AdminDashboard)
			stats.GET("/engineer", middleware.RequireRole(entity.RoleEngineer), h.Stats.EngineerDashboard)
		}
	}
}
