package models

import "time"

type Campaign struct {
	ID             string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Title          string `gorm:"column:title;type:text" json:"title"`
	JobDescription string `gorm:"column:job_description;type:text" json:"job_description"`
	Status         string `gorm:"column:status;type:text" json:"status"` // active|paused|completed

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Campaign) TableName() string { return "campaigns" }
