package models

import "time"

type Task struct {
	BaseModel
	PropertyID string     `gorm:"size:36;not null;index" json:"property_id"`
	Title      string     `gorm:"size:255;not null" json:"title"`
	DueDate    *time.Time `gorm:"type:date" json:"due_date,omitempty"`
	Mandatory  bool       `gorm:"not null;default:true" json:"mandatory"`
	Status     TaskStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
}
