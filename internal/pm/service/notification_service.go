package service

import (
	"context"
	"time"

	"github.com/buildtrack/buildtrack/internal/pm/entity"
	"github.com/buildtrack/buildtrack/internal/pm/repository"
	"github.com/buildtrack/buildtrack/internal/pm/sse"
	"github.com/buildtrack/buildtrack/internal/shared/metrics"
	"github.com/buildtrack/buildtrack/internal/shared/mq"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RoutingKeyNotificationCreated 通知事件路由，邮件中继服务绑定该路由发信
const RoutingKeyNotificationCreated = "notification.created"

// NotificationService 通知服务。Notify 是全系统唯一的通知出口：
// 落库 + SSE 推送 + 可选的 MQ 邮件中继。投递失败只记日志，从不向调用方冒泡。
type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	userRepo         *repository.UserRepository
	publisher        *mq.Publisher
	rdb              *redis.Client
	logger           *zap.Logger
}

// NewNotificationService 创建通知服务，publisher 和 rdb 可为 nil
func NewNotificationService(
	notificationRepo *repository.NotificationRepository,
	userRepo *repository.UserRepository,
	publisher *mq.Publisher,
	rdb *redis.Client,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		publisher:        publisher,
		rdb:              rdb,
		logger:           logger,
	}
}

// NotificationEvent MQ 上的通知事件载荷
type NotificationEvent struct {
	NotificationID string `json:"notification_id"`
	UserID         string `json:"user_id"`
	Email          string `json:"email"`
	Type           string `json:"type"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	RelatedID      string `json:"related_id,omitempty"`
}

// Notify 给单个用户发通知，尽力而为
func (s *NotificationService) Notify(ctx context.Context, userID, ntype, title, message, relatedID string) {
	notification := &entity.Notification{
		ID:        uuid.New().String()[:32],
		UserID:    userID,
		Type:      ntype,
		Title:     title,
		Message:   message,
		Read:      false,
		RelatedID: relatedID,
		CreatedAt: time.Now(),
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Error("Failed to store notification",
			zap.String("user_id", userID),
			zap.String("type", ntype),
			zap.Error(err),
		)
		metrics.NotificationCount.WithLabelValues(ntype, "failed").Inc()
		return
	}
	metrics.NotificationCount.WithLabelValues(ntype, "stored").Inc()

	s.invalidateUnreadCount(ctx, userID)

	sse.PublishNotification(userID, notification.ID, ntype)
	metrics.NotificationCount.WithLabelValues(ntype, "sse").Inc()

	// 邮件中继：查不到用户或发布失败都只记日志
	if s.publisher == nil {
		return
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("Notification recipient lookup failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return
	}
	event := NotificationEvent{
		NotificationID: notification.ID,
		UserID:         userID,
		Email:          user.Email,
		Type:           ntype,
		Title:          title,
		Message:        message,
		RelatedID:      relatedID,
	}
	if err := s.publisher.Publish(RoutingKeyNotificationCreated, event); err != nil {
		s.logger.Error("Failed to publish notification event",
			zap.String("notification_id", notification.ID),
			zap.Error(err),
		)
		return
	}
	metrics.NotificationCount.WithLabelValues(ntype, "mq").Inc()
}

// NotifyRole 给某个角色的所有用户发通知
func (s *NotificationService) NotifyRole(ctx context.Context, role, ntype, title, message, relatedID string) {
	users, err := s.userRepo.List(ctx, role)
	if err != nil {
		s.logger.Error("Failed to list notification recipients",
			zap.String("role", role),
			zap.Error(err),
		)
		return
	}
	for _, u := range users {
		s.Notify(ctx, u.ID, ntype, title, message, relatedID)
	}
}

// List 获取用户通知列表
func (s *NotificationService) List(ctx context.Context, userID string) ([]entity.Notification, error) {
	return s.notificationRepo.ListByUser(ctx, userID)
}

// MarkRead 标记已读
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.notificationRepo.MarkRead(ctx, id, userID); err != nil {
		return err
	}
	s.invalidateUnreadCount(ctx, userID)
	return nil
}

// UnreadCount 未读数，带 redis 短缓存
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	key := "notify:unread:" + userID
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Int64(); err == nil {
			return cached, nil
		}
	}

	count, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, key, count, 30*time.Second).Err(); err != nil {
			s.logger.Warn("Failed to cache unread count", zap.Error(err))
		}
	}
	return count, nil
}

func (s *NotificationService) invalidateUnreadCount(ctx context.Context, userID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, "notify:unread:"+userID).Err(); err != nil {
		s.logger.Warn("Failed to invalidate unread count cache",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}
