package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CallEvent is a best-effort journal entry for one webhook step. Written
// outside the reply path; losing one never affects the live call.
type CallEvent struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	InterviewID string             `bson:"interview_id" json:"interview_id"`

	Step          string `bson:"step" json:"step"` // call_start|question|response|next|status
	QuestionIndex *int   `bson:"question_index,omitempty" json:"question_index,omitempty"`
	CallSID       string `bson:"call_sid,omitempty" json:"call_sid,omitempty"`

	Detail string `bson:"detail,omitempty" json:"detail,omitempty"`
	Error  string `bson:"error,omitempty" json:"error,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"` // for TTL index
}
