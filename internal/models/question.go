package models

import "github.com/lib/pq"

// Question is immutable once its campaign is generated; OrderIndex fixes the
// order the question is asked in for every interview on the campaign.
type Question struct {
	ID         string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CampaignID string `gorm:"column:campaign_id;type:uuid;index" json:"campaign_id"`

	Text     string `gorm:"column:text;type:text" json:"text"`
	Category string `gorm:"column:category;type:text" json:"category"` // behavioral|technical|situational|general

	Criteria pq.StringArray `gorm:"column:criteria;type:text[]" json:"criteria"`

	OrderIndex int `gorm:"column:order_index;type:integer" json:"order_index"`
}

func (Question) TableName() string { return "questions" }
