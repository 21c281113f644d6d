package entity

import (
	"time"
)

// Material 材料申请实体
type Material struct {
	ID            string    `json:"material_id" gorm:"primaryKey;size:32"`
	ProjectID     string    `json:"project_id" gorm:"size:32;not null;index"`
	EngineerID    string    `json:"engineer_id" gorm:"size:32;not null;index"`
	EngineerName  string    `json:"engineer_name" gorm:"size:128"`
	Name          string    `json:"name" gorm:"size:128;not null"`
	Quantity      string    `json:"quantity" gorm:"size:64"`
	RequiredDate  string    `json:"required_date" gorm:"size:10"`
	Status        string    `json:"status" gorm:"size:16;not null;default:Pending"`
	AdminComments string    `json:"admin_comments" gorm:"type:text"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Material) TableName() string {
	return "materials"
}

// ApprovalStatus 审批状态（图纸和材料申请共用）
const (
	ApprovalStatusPending  = "Pending"
	ApprovalStatusApproved = "Approved"
	ApprovalStatusRejected = "Rejected"
)
