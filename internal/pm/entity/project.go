package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList jsonb 字符串数组字段
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}
}

// Project 工程项目实体
type Project struct {
	ID                string     `json:"project_id" gorm:"primaryKey;size:32"`
	Name              string     `json:"name" gorm:"size:128;not null"`
	ClientEmail       string     `json:"client_email" gorm:"size:128;not null;index"`
	ClientName        string     `json:"client_name" gorm:"size:128"`
	Location          string     `json:"location" gorm:"size:256"`
	StartDate         string     `json:"start_date" gorm:"size:10"`
	EndDate           string     `json:"end_date" gorm:"size:10"`
	Budget            float64    `json:"budget" gorm:"type:decimal(15,2)"`
	Status            string     `json:"status" gorm:"size:16;not null;default:Planning"`
	AssignedEngineers StringList `json:"assigned_engineers" gorm:"type:jsonb;default:'[]'"`
	Progress          float64    `json:"progress" gorm:"type:decimal(5,2);not null;default:0"`
	CreatedBy         string     `json:"created_by_admin" gorm:"column:created_by_admin;size:32;not null;index"`
	CreatedAt         time.Time  `json:"created_at"`
}

func (Project) TableName() string {
	return "projects"
}

// Team 施工班组
type Team struct {
	ID          string     `json:"team_id" gorm:"primaryKey;size:32"`
	Name        string     `json:"name" gorm:"size:128;not null"`
	ProjectID   string     `json:"project_id" gorm:"size:32;not null;index"`
	EngineerIDs StringList `json:"engineer_ids" gorm:"type:jsonb;default:'[]'"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (Team) TableName() string {
	return "teams"
}

// ProjectStatus 项目状态
const (
	ProjectStatusPlanning   = "Planning"
	ProjectStatusInProgress = "In Progress"
	ProjectStatusCompleted  = "Completed"
)
