package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hirevox/hirevox/internal/models"
	pgrepo "github.com/hirevox/hirevox/internal/repositories/postgres"
	"github.com/hirevox/hirevox/internal/utils"
)

// RecordParams is one captured utterance from the call provider.
type RecordParams struct {
	InterviewID string
	QuestionID  string
	Transcript  string
	Confidence  float64
	AudioURL    string
	Duration    int // seconds
}

// ResponseRecorder persists captured answers idempotently: re-recording the
// same (interview, question) pair overwrites the captured fields instead of
// creating a second row. Score and analysis are left null for the scoring
// worker.
type ResponseRecorder interface {
	Record(ctx context.Context, p RecordParams) (*models.Response, error)
}

type responseRecorder struct {
	responses pgrepo.ResponseRepository
}

func NewResponseRecorder(responses pgrepo.ResponseRepository) ResponseRecorder {
	return &responseRecorder{responses: responses}
}

func (r *responseRecorder) Record(ctx context.Context, p RecordParams) (*models.Response, error) {
	const op = "ResponseRecorder.Record"

	if p.InterviewID == "" || p.QuestionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "interview_id and question_id are required", nil)
	}

	now := time.Now().UTC()
	row := &models.Response{
		ID:          uuid.NewString(),
		InterviewID: p.InterviewID,
		QuestionID:  p.QuestionID,
		Transcript:  p.Transcript,
		Confidence:  p.Confidence,
		AudioURL:    p.AudioURL,
		Duration:    p.Duration,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	out, err := r.responses.Upsert(ctx, row)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to record response", err)
	}
	return out, nil
}
