package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/providers/ai"
	"github.com/hirevox/hirevox/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCampaignRepo struct {
	mu        sync.Mutex
	rows      map[string]*models.Campaign
	questions map[string][]models.Question
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{
		rows:      map[string]*models.Campaign{},
		questions: map[string][]models.Question{},
	}
}

func (r *fakeCampaignRepo) Create(ctx context.Context, campaign *models.Campaign, questions []models.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *campaign
	r.rows[campaign.ID] = &cp
	r.questions[campaign.ID] = append([]models.Question(nil), questions...)
	return nil
}

func (r *fakeCampaignRepo) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCampaignRepo) List(ctx context.Context) ([]models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Campaign
	for _, c := range r.rows {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCampaignRepo) CountQuestions(ctx context.Context, campaignID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.questions[campaignID])), nil
}

func (r *fakeCampaignRepo) CountCandidates(ctx context.Context, campaignID string) (int64, error) {
	return 0, nil
}

type campaignFixture struct {
	svc        CampaignService
	campaigns  *fakeCampaignRepo
	candidates *fakeCandidateRepo
	interviews *fakeInterviewRepo
	ai         *fakeAI
}

func newCampaignFixture() *campaignFixture {
	f := &campaignFixture{
		campaigns:  newFakeCampaignRepo(),
		candidates: newFakeCandidateRepo(),
		interviews: newFakeInterviewRepo(),
		ai:         &fakeAI{},
	}
	f.svc = NewCampaignService(f.campaigns, f.candidates, f.interviews, f.ai)
	return f
}

func TestCreateCampaignGeneratesQuestions(t *testing.T) {
	f := newCampaignFixture()
	f.ai.questions = []ai.GeneratedQuestion{
		{Text: "Second by order", Category: "technical", Criteria: []string{"depth"}, Order: 2},
		{Text: "First by order", Category: "behavioral", Order: 1},
	}

	out, err := f.svc.Create(context.Background(), "Backend Engineer", "We need a Go engineer.")
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", out.Title)
	assert.Equal(t, "active", out.Status)
	assert.Equal(t, int64(2), out.QuestionCount)

	qs := f.campaigns.questions[out.ID]
	require.Len(t, qs, 2)
	assert.Equal(t, "First by order", qs[0].Text)
	assert.Equal(t, 0, qs[0].OrderIndex)
	assert.Equal(t, "Second by order", qs[1].Text)
	assert.Equal(t, 1, qs[1].OrderIndex)
	assert.Equal(t, []string{"depth"}, []string(qs[1].Criteria))
}

func TestCreateCampaignValidatesInput(t *testing.T) {
	f := newCampaignFixture()

	_, err := f.svc.Create(context.Background(), "  ", "desc")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, err = f.svc.Create(context.Background(), "title", "")
	require.Error(t, err)
}

func TestCreateCampaignGeneratorFailure(t *testing.T) {
	f := newCampaignFixture()
	f.ai.generateErr = errors.New("quota exceeded")

	_, err := f.svc.Create(context.Background(), "Role", "Description")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeUnavailable))
	assert.Empty(t, f.campaigns.rows)
}

func TestUploadCandidates(t *testing.T) {
	f := newCampaignFixture()
	f.ai.questions = []ai.GeneratedQuestion{{Text: "q"}}

	c, err := f.svc.Create(context.Background(), "Role", "Description")
	require.NoError(t, err)

	csvBody := strings.Join([]string{
		"Name,Email,Phone",
		"Ada Lovelace,ada@example.com,+15550000001",
		"Grace Hopper,,+15550000002",
		"No Phone,nophone@example.com,", // skipped: missing phone
		",missing@example.com,+15550000003", // skipped: missing name
	}, "\n")

	n, err := f.svc.UploadCandidates(context.Background(), c.ID, strings.NewReader(csvBody))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := f.candidates.ListByCampaign(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, cand := range rows {
		assert.Equal(t, "pending", cand.Status)
		assert.NotEmpty(t, cand.Phone)
	}
}

func TestUploadCandidatesHeaderOrderInsensitive(t *testing.T) {
	f := newCampaignFixture()
	f.ai.questions = []ai.GeneratedQuestion{{Text: "q"}}

	c, err := f.svc.Create(context.Background(), "Role", "Description")
	require.NoError(t, err)

	csvBody := "phone,name\n+15550000009,Katherine Johnson\n"
	n, err := f.svc.UploadCandidates(context.Background(), c.ID, strings.NewReader(csvBody))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rows, _ := f.candidates.ListByCampaign(context.Background(), c.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, "Katherine Johnson", rows[0].Name)
	assert.Empty(t, rows[0].Email)
}

func TestUploadCandidatesMissingColumns(t *testing.T) {
	f := newCampaignFixture()
	f.ai.questions = []ai.GeneratedQuestion{{Text: "q"}}

	c, err := f.svc.Create(context.Background(), "Role", "Description")
	require.NoError(t, err)

	_, err = f.svc.UploadCandidates(context.Background(), c.ID, strings.NewReader("name,email\nA,a@b.c\n"))
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestUploadCandidatesUnknownCampaign(t *testing.T) {
	f := newCampaignFixture()

	_, err := f.svc.UploadCandidates(context.Background(), "missing", strings.NewReader("name,phone\n"))
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func TestListCandidatesIncludesLatestInterview(t *testing.T) {
	f := newCampaignFixture()
	f.ai.questions = []ai.GeneratedQuestion{{Text: "q"}}

	c, err := f.svc.Create(context.Background(), "Role", "Description")
	require.NoError(t, err)

	_, err = f.svc.UploadCandidates(context.Background(), c.ID,
		strings.NewReader("name,phone\nDana,+15550001111\n"))
	require.NoError(t, err)

	cands, err := f.candidates.ListByCampaign(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, cands, 1)

	score := 7.0
	require.NoError(t, f.interviews.Create(context.Background(), &models.Interview{
		ID:             "iv-1",
		CandidateID:    cands[0].ID,
		CampaignID:     c.ID,
		Status:         models.InterviewCompleted,
		OverallScore:   &score,
		Recommendation: "maybe",
	}))

	out, err := f.svc.ListCandidates(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "iv-1", out[0].InterviewID)
	require.NotNil(t, out[0].OverallScore)
	assert.Equal(t, 7.0, *out[0].OverallScore)
	assert.Equal(t, "maybe", out[0].Recommendation)
}
