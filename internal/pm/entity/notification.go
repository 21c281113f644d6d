package entity

import (
	"time"
)

// Notification 站内通知实体
type Notification struct {
	ID        string    `json:"notification_id" gorm:"primaryKey;size:32"`
	UserID    string    `json:"user_id" gorm:"size:32;not null;index"`
	Type      string    `json:"type" gorm:"size:32;not null"`
	Title     string    `json:"title" gorm:"size:256;not null"`
	Message   string    `json:"message" gorm:"type:text"`
	Read      bool      `json:"read" gorm:"not null;default:false"`
	RelatedID string    `json:"related_id" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// 通知类型
const (
	NotifyTypeDrawingUpload   = "drawing_upload"
	NotifyTypeDrawingStatus   = "drawing_status"
	NotifyTypeMaterialRequest = "material_request"
	NotifyTypeMaterialStatus  = "material_status"
	NotifyTypeHolidayAdded    = "holiday_added"
	NotifyTypeScheduleAdded   = "schedule_added"
	NotifyTypeScheduleUpdate  = "schedule_update"
)
