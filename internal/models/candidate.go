package models

import "time"

type Candidate struct {
	ID         string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CampaignID string `gorm:"column:campaign_id;type:uuid;index" json:"campaign_id"`

	Name   string `gorm:"column:name;type:text" json:"name"`
	Email  string `gorm:"column:email;type:text" json:"email"`
	Phone  string `gorm:"column:phone;type:text" json:"phone"`
	Status string `gorm:"column:status;type:text" json:"status"` // pending|interviewing|interviewed|selected|rejected

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (Candidate) TableName() string { return "candidates" }
