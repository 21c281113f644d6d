package entity

import (
	"time"
)

// 用户角色
const (
	RoleAdmin    = "Admin"
	RoleEngineer = "Engineer"
	RoleClient   = "Client"
)

// User 用户实体
type User struct {
	ID           string    `json:"user_id" gorm:"primaryKey;size:32"`
	Email        string    `json:"email" gorm:"size:128;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"size:128;not null"`
	Name         string    `json:"name" gorm:"size:128;not null"`
	Role         string    `json:"role" gorm:"size:16;not null"`
	EmployeeID   string    `json:"employee_id,omitempty" gorm:"size:64"`
	CreatedAt    time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
