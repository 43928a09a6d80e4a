package models

import "time"

// Response is created exactly once per (interview, question) pair; the
// unique index backs the recorder's upsert. Score and Analysis stay null
// until the scoring worker fills them in.
type Response struct {
	ID          string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	InterviewID string `gorm:"column:interview_id;type:uuid;uniqueIndex:uniq_interview_question" json:"interview_id"`
	QuestionID  string `gorm:"column:question_id;type:uuid;uniqueIndex:uniq_interview_question" json:"question_id"`

	Transcript string  `gorm:"column:transcript;type:text" json:"transcript"`
	Confidence float64 `gorm:"column:confidence;type:double precision" json:"confidence"`

	AudioURL   string `gorm:"column:audio_url;type:text" json:"audio_url,omitempty"`     // provider recording
	ArchiveURL string `gorm:"column:archive_url;type:text" json:"archive_url,omitempty"` // GCS copy

	Score    *float64 `gorm:"column:score;type:double precision" json:"score,omitempty"`
	Analysis *string  `gorm:"column:analysis;type:text" json:"analysis,omitempty"`

	Duration int `gorm:"column:duration;type:integer" json:"duration,omitempty"` // seconds

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Response) TableName() string { return "responses" }
