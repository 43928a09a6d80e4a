package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hirevox/hirevox/internal/models"
	telprovider "github.com/hirevox/hirevox/internal/providers/telephony"
	"github.com/hirevox/hirevox/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCallProvider struct {
	mu       sync.Mutex
	requests []telprovider.StartCallRequest
	err      error
}

func (p *fakeCallProvider) StartCall(ctx context.Context, req telprovider.StartCallRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.requests = append(p.requests, req)
	return "CA-fake-1", nil
}

type interviewFixture struct {
	svc        InterviewService
	interviews *fakeInterviewRepo
	candidates *fakeCandidateRepo
	questions  *fakeQuestionRepo
	responses  *fakeResponseRepo
	calls      *fakeCallProvider

	candidateID string
	campaignID  string
}

func newInterviewFixture(t *testing.T, numQuestions int) *interviewFixture {
	t.Helper()

	f := &interviewFixture{
		interviews:  newFakeInterviewRepo(),
		candidates:  newFakeCandidateRepo(),
		questions:   &fakeQuestionRepo{},
		responses:   newFakeResponseRepo(),
		calls:       &fakeCallProvider{},
		candidateID: uuid.NewString(),
		campaignID:  uuid.NewString(),
	}

	require.NoError(t, f.candidates.CreateBatch(context.Background(), []models.Candidate{{
		ID:         f.candidateID,
		CampaignID: f.campaignID,
		Name:       "Dana",
		Phone:      "+15550001111",
		Status:     "pending",
	}}))
	for i := 0; i < numQuestions; i++ {
		f.questions.rows = append(f.questions.rows, models.Question{
			ID:         uuid.NewString(),
			CampaignID: f.campaignID,
			Text:       "q",
			OrderIndex: i,
		})
	}

	f.svc = NewInterviewService(
		f.interviews, f.candidates, f.questions, f.responses,
		f.calls, nil, nil, "https://screener.example.com", nil,
	)
	return f
}

func TestStartInterviewPlacesCall(t *testing.T) {
	f := newInterviewFixture(t, 2)

	iv, err := f.svc.Start(context.Background(), f.candidateID)
	require.NoError(t, err)
	assert.Equal(t, models.InterviewInProgress, iv.Status)
	assert.Equal(t, "CA-fake-1", iv.CallSID)
	require.NotNil(t, iv.StartedAt)

	require.Len(t, f.calls.requests, 1)
	req := f.calls.requests[0]
	assert.Equal(t, "+15550001111", req.To)
	assert.Equal(t, "https://screener.example.com/webhooks/call/start/"+iv.ID, req.AnswerURL)
	assert.Equal(t, "https://screener.example.com/webhooks/call/status", req.StatusCallback)

	cand, err := f.candidates.GetByID(context.Background(), f.candidateID)
	require.NoError(t, err)
	assert.Equal(t, "interviewing", cand.Status)

	stored, err := f.interviews.GetByCallSID(context.Background(), "CA-fake-1")
	require.NoError(t, err)
	assert.Equal(t, iv.ID, stored.ID)
}

func TestStartInterviewDialFailure(t *testing.T) {
	f := newInterviewFixture(t, 2)
	f.calls.err = errors.New("provider down")

	_, err := f.svc.Start(context.Background(), f.candidateID)
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeUnavailable))

	// the created interview must be visibly failed, not stuck in progress
	iv, err := f.interviews.LatestByCandidate(context.Background(), f.candidateID)
	require.NoError(t, err)
	assert.Equal(t, models.InterviewFailed, iv.Status)
}

func TestStartInterviewNoQuestions(t *testing.T) {
	f := newInterviewFixture(t, 0)

	_, err := f.svc.Start(context.Background(), f.candidateID)
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
	assert.Empty(t, f.calls.requests)
}

func TestStartInterviewUnknownCandidate(t *testing.T) {
	f := newInterviewFixture(t, 1)

	_, err := f.svc.Start(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func TestGetInterviewJoinsQuestions(t *testing.T) {
	f := newInterviewFixture(t, 1)

	iv, err := f.svc.Start(context.Background(), f.candidateID)
	require.NoError(t, err)

	_, err = f.responses.Upsert(context.Background(), &models.Response{
		ID:          uuid.NewString(),
		InterviewID: iv.ID,
		QuestionID:  f.questions.rows[0].ID,
		Transcript:  "an answer",
	})
	require.NoError(t, err)

	detail, err := f.svc.Get(context.Background(), iv.ID)
	require.NoError(t, err)
	require.Len(t, detail.Responses, 1)
	assert.Equal(t, "an answer", detail.Responses[0].Transcript)
	assert.Equal(t, "q", detail.Responses[0].QuestionText)
}

type fakeSigner struct{}

func (fakeSigner) SignedGetURL(ctx context.Context, objectName string, ttl time.Duration) (string, error) {
	return "https://signed.example.com/" + objectName, nil
}

func TestGetInterviewSignsArchivedRecordings(t *testing.T) {
	f := newInterviewFixture(t, 1)
	svc := NewInterviewService(
		f.interviews, f.candidates, f.questions, f.responses,
		f.calls, nil, fakeSigner{}, "https://screener.example.com", nil,
	)

	iv, err := svc.Start(context.Background(), f.candidateID)
	require.NoError(t, err)

	row, err := f.responses.Upsert(context.Background(), &models.Response{
		ID:          uuid.NewString(),
		InterviewID: iv.ID,
		QuestionID:  f.questions.rows[0].ID,
		Transcript:  "answer",
	})
	require.NoError(t, err)
	require.NoError(t, f.responses.SetArchiveURL(context.Background(), row.ID,
		"gs://recordings-bucket/recordings/"+iv.ID+"/"+f.questions.rows[0].ID+".wav"))

	detail, err := svc.Get(context.Background(), iv.ID)
	require.NoError(t, err)
	require.Len(t, detail.Responses, 1)
	assert.Equal(t,
		"https://signed.example.com/recordings/"+iv.ID+"/"+f.questions.rows[0].ID+".wav",
		detail.Responses[0].RecordingLink)
}

func TestObjectFromGSURL(t *testing.T) {
	obj, ok := objectFromGSURL("gs://bucket/a/b.wav")
	require.True(t, ok)
	assert.Equal(t, "a/b.wav", obj)

	_, ok = objectFromGSURL("https://example.com/a.wav")
	assert.False(t, ok)
	_, ok = objectFromGSURL("gs://bucket")
	assert.False(t, ok)
	_, ok = objectFromGSURL("gs://bucket/")
	assert.False(t, ok)
}

func TestEventsWithoutJournal(t *testing.T) {
	f := newInterviewFixture(t, 1)

	_, err := f.svc.Events(context.Background(), "iv-1")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeUnavailable))
}
