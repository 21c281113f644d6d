package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 仓库集合
type Repositories struct {
	User         *UserRepository
	Project      *ProjectRepository
	Schedule     *ScheduleRepository
	Holiday      *HolidayRepository
	Material     *MaterialRepository
	Drawing      *DrawingRepository
	Notification *NotificationRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Project:      NewProjectRepository(db),
		Schedule:     NewScheduleRepository(db),
		Holiday:      NewHolidayRepository(db),
		Material:     NewMaterialRepository(db),
		Drawing:      NewDrawingRepository(db),
		Notification: NewNotificationRepository(db),
	}
}
