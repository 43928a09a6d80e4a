package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/providers/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAI struct {
	mu sync.Mutex

	questions   []ai.GeneratedQuestion
	generateErr error

	analysis   *ai.ResponseAnalysis
	analyzeErr error

	assessment *ai.Assessment
	assessErr  error

	analyzeCalls int
	assessCalls  int
}

func (f *fakeAI) GenerateQuestions(ctx context.Context, jobDescription string) ([]ai.GeneratedQuestion, error) {
	return f.questions, f.generateErr
}

func (f *fakeAI) AnalyzeResponse(ctx context.Context, question, transcript string, criteria []string) (*ai.ResponseAnalysis, error) {
	f.mu.Lock()
	f.analyzeCalls++
	f.mu.Unlock()
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	if f.analysis != nil {
		return f.analysis, nil
	}
	return &ai.ResponseAnalysis{Score: 6, Analysis: "ok"}, nil
}

func (f *fakeAI) FinalAssessment(ctx context.Context, items []ai.ResponseSummary) (*ai.Assessment, error) {
	f.mu.Lock()
	f.assessCalls++
	f.mu.Unlock()
	if f.assessErr != nil {
		return nil, f.assessErr
	}
	if f.assessment != nil {
		return f.assessment, nil
	}
	return &ai.Assessment{OverallScore: 7, CommunicationScore: 7, TechnicalScore: 7, Recommendation: "hire", Summary: "solid"}, nil
}

func (f *fakeAI) Close() error { return nil }

type scoringFixture struct {
	svc        ScoringService
	ai         *fakeAI
	responses  *fakeResponseRepo
	questions  *fakeQuestionRepo
	interviews *fakeInterviewRepo
	candidates *fakeCandidateRepo

	interviewID string
	candidateID string
	campaignID  string
}

func newScoringFixture(t *testing.T) *scoringFixture {
	t.Helper()

	f := &scoringFixture{
		ai:          &fakeAI{},
		responses:   newFakeResponseRepo(),
		questions:   &fakeQuestionRepo{},
		interviews:  newFakeInterviewRepo(),
		candidates:  newFakeCandidateRepo(),
		interviewID: uuid.NewString(),
		candidateID: uuid.NewString(),
		campaignID:  uuid.NewString(),
	}

	require.NoError(t, f.candidates.CreateBatch(context.Background(), []models.Candidate{{
		ID:         f.candidateID,
		CampaignID: f.campaignID,
		Name:       "Dana",
		Phone:      "+15550001111",
		Status:     "interviewing",
	}}))
	require.NoError(t, f.interviews.Create(context.Background(), &models.Interview{
		ID:          f.interviewID,
		CandidateID: f.candidateID,
		CampaignID:  f.campaignID,
		Status:      models.InterviewCompleted,
	}))

	f.svc = NewScoringService(f.responses, f.questions, f.interviews, f.candidates, f.ai, nil, nil, nil)
	return f
}

func (f *scoringFixture) addResponse(t *testing.T, transcript string, score *float64) *models.Response {
	t.Helper()

	q := models.Question{
		ID:         uuid.NewString(),
		CampaignID: f.campaignID,
		Text:       "Tell me about a conflict you resolved.",
		Criteria:   []string{"clarity", "ownership"},
	}
	f.questions.rows = append(f.questions.rows, q)

	row, err := f.responses.Upsert(context.Background(), &models.Response{
		ID:          uuid.NewString(),
		InterviewID: f.interviewID,
		QuestionID:  q.ID,
		Transcript:  transcript,
		Confidence:  0.9,
		CreatedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)
	if score != nil {
		require.NoError(t, f.responses.SetScore(context.Background(), row.ID, *score, "prescored"))
	}
	return row
}

func TestScoreResponseSavesScore(t *testing.T) {
	f := newScoringFixture(t)
	f.ai.analysis = &ai.ResponseAnalysis{Score: 8.5, Analysis: "thorough answer"}

	row := f.addResponse(t, "I talked to both sides and found a compromise.", nil)
	require.NoError(t, f.svc.ScoreResponse(context.Background(), row.ID))

	stored, err := f.responses.GetByID(context.Background(), row.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Score)
	assert.Equal(t, 8.5, *stored.Score)
	require.NotNil(t, stored.Analysis)
	assert.Equal(t, "thorough answer", *stored.Analysis)
}

func TestScoreResponseCollaboratorFailureLeavesNull(t *testing.T) {
	f := newScoringFixture(t)
	f.ai.analyzeErr = errors.New("model overloaded")

	row := f.addResponse(t, "some answer", nil)
	err := f.svc.ScoreResponse(context.Background(), row.ID)
	require.Error(t, err)

	stored, gerr := f.responses.GetByID(context.Background(), row.ID)
	require.NoError(t, gerr)
	assert.Nil(t, stored.Score)
	assert.Nil(t, stored.Analysis)
}

func TestScoreResponseUnknownID(t *testing.T) {
	f := newScoringFixture(t)
	err := f.svc.ScoreResponse(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, 0, f.ai.analyzeCalls)
}

func TestFinalizeInterviewSavesAssessment(t *testing.T) {
	f := newScoringFixture(t)
	f.ai.assessment = &ai.Assessment{
		OverallScore:       8,
		CommunicationScore: 7.5,
		TechnicalScore:     8.5,
		Recommendation:     "hire",
		Summary:            "strong candidate",
	}

	s := 8.0
	f.addResponse(t, "first answer", &s)
	f.addResponse(t, "second answer", &s)

	require.NoError(t, f.svc.FinalizeInterview(context.Background(), f.interviewID))

	iv, err := f.interviews.GetByID(context.Background(), f.interviewID)
	require.NoError(t, err)
	require.NotNil(t, iv.OverallScore)
	assert.Equal(t, 8.0, *iv.OverallScore)
	assert.Equal(t, "hire", iv.Recommendation)
	assert.NotEmpty(t, iv.Assessment)

	cand, err := f.candidates.GetByID(context.Background(), f.candidateID)
	require.NoError(t, err)
	assert.Equal(t, "interviewed", cand.Status)
}

func TestFinalizeInterviewNoResponses(t *testing.T) {
	f := newScoringFixture(t)

	// zero captured answers still finalizes, with the local fallback
	require.NoError(t, f.svc.FinalizeInterview(context.Background(), f.interviewID))
	assert.Equal(t, 0, f.ai.assessCalls)

	iv, err := f.interviews.GetByID(context.Background(), f.interviewID)
	require.NoError(t, err)
	assert.Equal(t, "maybe", iv.Recommendation)
	require.NotNil(t, iv.OverallScore)
	assert.Equal(t, 0.0, *iv.OverallScore)

	cand, err := f.candidates.GetByID(context.Background(), f.candidateID)
	require.NoError(t, err)
	assert.Equal(t, "interviewed", cand.Status)
}

func TestFinalizeInterviewFallbackOnCollaboratorFailure(t *testing.T) {
	f := newScoringFixture(t)
	f.ai.assessErr = errors.New("model overloaded")

	high := 9.0
	low := 2.0
	f.addResponse(t, "great answer", &high)
	f.addResponse(t, "weak answer", &low)

	require.NoError(t, f.svc.FinalizeInterview(context.Background(), f.interviewID))

	iv, err := f.interviews.GetByID(context.Background(), f.interviewID)
	require.NoError(t, err)
	require.NotNil(t, iv.OverallScore)
	assert.InDelta(t, 5.5, *iv.OverallScore, 1e-9)
	assert.Equal(t, "maybe", iv.Recommendation)
}

func TestFinalizeInterviewFallbackHireThreshold(t *testing.T) {
	f := newScoringFixture(t)
	f.ai.assessErr = errors.New("model overloaded")

	s := 8.0
	f.addResponse(t, "answer", &s)

	require.NoError(t, f.svc.FinalizeInterview(context.Background(), f.interviewID))

	iv, err := f.interviews.GetByID(context.Background(), f.interviewID)
	require.NoError(t, err)
	assert.Equal(t, "hire", iv.Recommendation)
}

func TestFinalizeInterviewUnknownID(t *testing.T) {
	f := newScoringFixture(t)
	require.Error(t, f.svc.FinalizeInterview(context.Background(), "missing"))
}
