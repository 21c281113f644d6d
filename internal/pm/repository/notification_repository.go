package repository

import (
	"context"

	"github.com/buildtrack/buildtrack/internal/pm/entity"
	"gorm.io/gorm"
)

// NotificationRepository 通知仓库
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知仓库
func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create 创建通知
func (r *NotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// ListByUser 获取用户通知，最新的在前，最多100条
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]entity.Notification, error) {
	var notifications []entity.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(100).
		Find(&notifications).Error
	return notifications, err
}

// MarkRead 标记通知已读，只能标记自己的通知
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUnread 统计未读通知数
func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}
