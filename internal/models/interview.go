package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	InterviewPending    = "pending"
	InterviewInProgress = "in_progress"
	InterviewCompleted  = "completed"
	InterviewFailed     = "failed"
)

type Interview struct {
	ID          string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CandidateID string `gorm:"column:candidate_id;type:uuid;index" json:"candidate_id"`
	CampaignID  string `gorm:"column:campaign_id;type:uuid;index" json:"campaign_id"`

	Status      string     `gorm:"column:status;type:text" json:"status"`
	StartedAt   *time.Time `gorm:"column:started_at;type:timestamptz" json:"started_at,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at;type:timestamptz" json:"completed_at,omitempty"`

	OverallScore       *float64 `gorm:"column:overall_score;type:double precision" json:"overall_score,omitempty"`
	CommunicationScore *float64 `gorm:"column:communication_score;type:double precision" json:"communication_score,omitempty"`
	TechnicalScore     *float64 `gorm:"column:technical_score;type:double precision" json:"technical_score,omitempty"`
	Recommendation     string   `gorm:"column:recommendation;type:text" json:"recommendation,omitempty"` // hire|no_hire|maybe

	// raw aggregate payload from the scoring collaborator, kept for audit
	Assessment datatypes.JSON `gorm:"column:assessment;type:jsonb" json:"assessment,omitempty"`

	CallSID      string `gorm:"column:call_sid;type:text;index" json:"call_sid,omitempty"`
	CallDuration int    `gorm:"column:call_duration;type:integer" json:"call_duration,omitempty"` // seconds

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Interview) TableName() string { return "interviews" }
