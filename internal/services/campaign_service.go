package services

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/providers/ai"
	pgrepo "github.com/hirevox/hirevox/internal/repositories/postgres"
	"github.com/hirevox/hirevox/internal/utils"
)

const generateTimeout = 45 * time.Second

// CampaignSummary is a campaign row with its aggregate counts.
type CampaignSummary struct {
	models.Campaign
	QuestionCount  int64 `json:"questions_count"`
	CandidateCount int64 `json:"candidates_count"`
}

// CandidateSummary is a candidate with their latest interview outcome.
type CandidateSummary struct {
	models.Candidate
	InterviewID    string   `json:"interview_id,omitempty"`
	OverallScore   *float64 `json:"overall_score,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
}

type CampaignService interface {
	Create(ctx context.Context, title, jobDescription string) (*CampaignSummary, error)
	Get(ctx context.Context, id string) (*CampaignSummary, error)
	List(ctx context.Context) ([]CampaignSummary, error)
	UploadCandidates(ctx context.Context, campaignID string, r io.Reader) (int, error)
	ListCandidates(ctx context.Context, campaignID string) ([]CandidateSummary, error)
}

type campaignService struct {
	campaigns  pgrepo.CampaignRepository
	candidates pgrepo.CandidateRepository
	interviews pgrepo.InterviewRepository
	ai         ai.Provider
}

func NewCampaignService(
	campaigns pgrepo.CampaignRepository,
	candidates pgrepo.CandidateRepository,
	interviews pgrepo.InterviewRepository,
	aiProvider ai.Provider,
) CampaignService {
	return &campaignService{
		campaigns:  campaigns,
		candidates: candidates,
		interviews: interviews,
		ai:         aiProvider,
	}
}

func (s *campaignService) Create(ctx context.Context, title, jobDescription string) (*CampaignSummary, error) {
	const op = "CampaignService.Create"

	if strings.TrimSpace(title) == "" || strings.TrimSpace(jobDescription) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "title and job_description are required", nil)
	}

	gctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	generated, err := s.ai.GenerateQuestions(gctx, jobDescription)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "question generation failed", err)
	}
	if len(generated) == 0 {
		return nil, utils.E(utils.CodeUnavailable, op, "question generator produced no questions", nil)
	}

	sort.SliceStable(generated, func(i, j int) bool { return generated[i].Order < generated[j].Order })

	now := time.Now().UTC()
	campaign := &models.Campaign{
		ID:             uuid.NewString(),
		Title:          strings.TrimSpace(title),
		JobDescription: jobDescription,
		Status:         "active",
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	questions := make([]models.Question, len(generated))
	for i, g := range generated {
		category := g.Category
		if category == "" {
			category = "general"
		}
		questions[i] = models.Question{
			ID:         uuid.NewString(),
			CampaignID: campaign.ID,
			Text:       g.Text,
			Category:   category,
			Criteria:   g.Criteria,
			OrderIndex: i,
		}
	}

	if err := s.campaigns.Create(ctx, campaign, questions); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create campaign", err)
	}

	return &CampaignSummary{Campaign: *campaign, QuestionCount: int64(len(questions))}, nil
}

func (s *campaignService) Get(ctx context.Context, id string) (*CampaignSummary, error) {
	const op = "CampaignService.Get"

	if id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "campaign id is required", nil)
	}

	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "campaign not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get campaign", err)
	}
	return s.summarize(ctx, c)
}

func (s *campaignService) List(ctx context.Context) ([]CampaignSummary, error) {
	const op = "CampaignService.List"

	rows, err := s.campaigns.List(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list campaigns", err)
	}

	out := make([]CampaignSummary, 0, len(rows))
	for i := range rows {
		sum, err := s.summarize(ctx, &rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *sum)
	}
	return out, nil
}

func (s *campaignService) summarize(ctx context.Context, c *models.Campaign) (*CampaignSummary, error) {
	const op = "CampaignService.summarize"

	qn, err := s.campaigns.CountQuestions(ctx, c.ID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count questions", err)
	}
	cn, err := s.campaigns.CountCandidates(ctx, c.ID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count candidates", err)
	}
	return &CampaignSummary{Campaign: *c, QuestionCount: qn, CandidateCount: cn}, nil
}

// UploadCandidates ingests a CSV with a header row containing name, email,
// and phone columns (any order, case-insensitive). Rows without a name or
// phone are skipped rather than failing the whole upload.
func (s *campaignService) UploadCandidates(ctx context.Context, campaignID string, r io.Reader) (int, error) {
	const op = "CampaignService.UploadCandidates"

	if _, err := s.campaigns.GetByID(ctx, campaignID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return 0, utils.E(utils.CodeNotFound, op, "campaign not found", err)
		}
		return 0, utils.E(utils.CodeInternal, op, "failed to get campaign", err)
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, utils.E(utils.CodeInvalidArgument, op, "csv is empty or unreadable", err)
	}

	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	nameIdx, nameOK := col["name"]
	phoneIdx, phoneOK := col["phone"]
	emailIdx, emailOK := col["email"]
	if !nameOK || !phoneOK {
		return 0, utils.E(utils.CodeInvalidArgument, op, "csv must have name and phone columns", nil)
	}

	field := func(row []string, idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var batch []models.Candidate
	now := time.Now().UTC()
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, utils.E(utils.CodeInvalidArgument, op, "malformed csv row", err)
		}

		name := field(row, nameIdx)
		phone := field(row, phoneIdx)
		if name == "" || phone == "" {
			continue
		}

		cand := models.Candidate{
			ID:         uuid.NewString(),
			CampaignID: campaignID,
			Name:       name,
			Phone:      phone,
			Status:     "pending",
			CreatedAt:  now,
		}
		if emailOK {
			cand.Email = field(row, emailIdx)
		}
		batch = append(batch, cand)
	}

	if err := s.candidates.CreateBatch(ctx, batch); err != nil {
		return 0, utils.E(utils.CodeInternal, op, "failed to save candidates", err)
	}
	return len(batch), nil
}

func (s *campaignService) ListCandidates(ctx context.Context, campaignID string) ([]CandidateSummary, error) {
	const op = "CampaignService.ListCandidates"

	rows, err := s.candidates.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list candidates", err)
	}

	out := make([]CandidateSummary, 0, len(rows))
	for _, c := range rows {
		sum := CandidateSummary{Candidate: c}
		iv, err := s.interviews.LatestByCandidate(ctx, c.ID)
		if err == nil {
			sum.InterviewID = iv.ID
			sum.OverallScore = iv.OverallScore
			sum.Recommendation = iv.Recommendation
		} else if !errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeInternal, op, "failed to load interview summary", err)
		}
		out = append(out, sum)
	}
	return out, nil
}
