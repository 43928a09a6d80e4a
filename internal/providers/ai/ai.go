package ai

import "context"

// GeneratedQuestion is one interview question derived from a job
// description. Order is the position the question should be asked in.
type GeneratedQuestion struct {
	Text     string   `json:"question"`
	Category string   `json:"category"` // behavioral|technical|situational|general
	Criteria []string `json:"criteria"`
	Order    int      `json:"order"`
}

// ResponseAnalysis scores one transcript against a question's criteria.
type ResponseAnalysis struct {
	Score    float64 `json:"score"` // 0..10
	Analysis string  `json:"analysis"`
}

// ResponseSummary is the per-question input to the aggregate assessment.
type ResponseSummary struct {
	Question   string  `json:"question"`
	Transcript string  `json:"transcript"`
	Score      float64 `json:"score"`
}

// Assessment is the aggregate hiring recommendation for one interview.
type Assessment struct {
	OverallScore       float64 `json:"overall_score"`
	CommunicationScore float64 `json:"communication_score"`
	TechnicalScore     float64 `json:"technical_score"`
	Recommendation     string  `json:"recommendation"` // hire|no_hire|maybe
	Summary            string  `json:"summary"`
}

type Provider interface {
	GenerateQuestions(ctx context.Context, jobDescription string) ([]GeneratedQuestion, error)
	AnalyzeResponse(ctx context.Context, question, transcript string, criteria []string) (*ResponseAnalysis, error)
	FinalAssessment(ctx context.Context, items []ResponseSummary) (*Assessment, error)
	Close() error
}
