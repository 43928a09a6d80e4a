package models

import "time"

// ContextQuestion is the context store's snapshot of a campaign question.
// The snapshot is taken once at call start so the live call never depends
// on campaign reads mid-flight.
type ContextQuestion struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Index int    `json:"index"`
}

// CallContext is the working memory of one in-progress interview call,
// keyed by interview id in the context store. Cursor is the index of the
// next question to ask; Cursor == len(Questions) is the terminal signal.
type CallContext struct {
	InterviewID   string            `json:"interview_id"`
	CampaignID    string            `json:"campaign_id"`
	CandidateName string            `json:"candidate_name"`
	Questions     []ContextQuestion `json:"questions"`
	Cursor        int               `json:"current_question_index"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Done reports whether the cursor has passed the last question.
func (c *CallContext) Done() bool { return c.Cursor >= len(c.Questions) }
