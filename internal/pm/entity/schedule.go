package entity

import (
	"time"
)

// SchedulePhase 排期阶段实体。EndDate 是派生字段，只由排期引擎写入。
type SchedulePhase struct {
	ID          string    `json:"schedule_id" gorm:"primaryKey;size:32"`
	ProjectID   string    `json:"project_id" gorm:"size:32;not null;index"`
	PhaseName   string    `json:"phase_name" gorm:"size:128;not null"`
	StartDate   string    `json:"start_date" gorm:"size:10;not null"`
	Duration    int       `json:"duration" gorm:"not null"`
	EndDate     string    `json:"end_date" gorm:"size:10;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Progress    float64   `json:"progress" gorm:"type:decimal(5,2);not null;default:0"`
	Status      string    `json:"status" gorm:"size:16;not null;default:'Not Started'"`
	CreatedAt   time.Time `json:"created_at"`
}

func (SchedulePhase) TableName() string {
	return "schedules"
}

// Holiday 节假日实体，日期为 YYYY-MM-DD，过期后由清理逻辑删除
type Holiday struct {
	ID        string    `json:"holiday_id" gorm:"primaryKey;size:32"`
	Name      string    `json:"name" gorm:"size:128;not null"`
	Date      string    `json:"date" gorm:"size:10;not null;index"`
	CreatedAt time.Time `json:"created_at"`
}

func (Holiday) TableName() string {
	return "holidays"
}

// PhaseStatus 阶段状态，由进度派生，不单独设置
const (
	PhaseStatusNotStarted = "Not Started"
	PhaseStatusOngoing    = "Ongoing"
	PhaseStatusCompleted  = "Completed"
)
