package entity

import (
	"time"
)

// Drawing 图纸实体，文件本体存放在对象存储
type Drawing struct {
	ID            string    `json:"drawing_id" gorm:"primaryKey;size:32"`
	ProjectID     string    `json:"project_id" gorm:"size:32;not null;index"`
	EngineerID    string    `json:"engineer_id" gorm:"size:32;not null;index"`
	EngineerName  string    `json:"engineer_name" gorm:"size:128"`
	ObjectKey     string    `json:"-" gorm:"size:256;not null"`
	FileName      string    `json:"filename" gorm:"size:256;not null"`
	ContentType   string    `json:"content_type" gorm:"size:128"`
	FileSize      int64     `json:"file_size"`
	Status        string    `json:"status" gorm:"size:16;not null;default:Pending"`
	AdminComments string    `json:"admin_comments" gorm:"type:text"`
	UploadDate    time.Time `json:"upload_date"`
}

func (Drawing) TableName() string {
	return "drawings"
}
