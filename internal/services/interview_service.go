package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hirevox/hirevox/internal/models"
	telprovider "github.com/hirevox/hirevox/internal/providers/telephony"
	mongorepo "github.com/hirevox/hirevox/internal/repositories/mongo"
	pgrepo "github.com/hirevox/hirevox/internal/repositories/postgres"
	"github.com/hirevox/hirevox/internal/storage"
	"github.com/hirevox/hirevox/internal/utils"
	"github.com/sirupsen/logrus"
)

const initiateCallTimeout = 15 * time.Second

const recordingLinkTTL = 15 * time.Minute

// ResponseDetail is one captured answer joined with its question text. When
// the recording was archived, RecordingLink is a short-lived download URL.
type ResponseDetail struct {
	models.Response
	QuestionText  string `json:"question_text"`
	RecordingLink string `json:"recording_link,omitempty"`
}

// InterviewDetail is the full read model for one interview.
type InterviewDetail struct {
	models.Interview
	Responses []ResponseDetail `json:"responses"`
}

type InterviewService interface {
	// Start creates the interview record and places the outbound call.
	Start(ctx context.Context, candidateID string) (*models.Interview, error)
	Get(ctx context.Context, id string) (*InterviewDetail, error)
	Events(ctx context.Context, id string) ([]models.CallEvent, error)
}

type interviewService struct {
	interviews pgrepo.InterviewRepository
	candidates pgrepo.CandidateRepository
	questions  pgrepo.QuestionRepository
	responses  pgrepo.ResponseRepository

	calls  telprovider.Provider
	events mongorepo.CallEventRepository // optional
	signer storage.Signer                // optional

	publicBaseURL string
	log           *logrus.Logger
}

func NewInterviewService(
	interviews pgrepo.InterviewRepository,
	candidates pgrepo.CandidateRepository,
	questions pgrepo.QuestionRepository,
	responses pgrepo.ResponseRepository,
	calls telprovider.Provider,
	events mongorepo.CallEventRepository,
	signer storage.Signer,
	publicBaseURL string,
	log *logrus.Logger,
) InterviewService {
	if log == nil {
		log = logrus.New()
	}
	return &interviewService{
		interviews:    interviews,
		candidates:    candidates,
		questions:     questions,
		responses:     responses,
		calls:         calls,
		events:        events,
		signer:        signer,
		publicBaseURL: publicBaseURL,
		log:           log,
	}
}

func (s *interviewService) Start(ctx context.Context, candidateID string) (*models.Interview, error) {
	const op = "InterviewService.Start"

	cand, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "candidate not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load candidate", err)
	}

	qs, err := s.questions.ListByCampaign(ctx, cand.CampaignID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load questions", err)
	}
	if len(qs) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "campaign has no questions", nil)
	}

	now := time.Now().UTC()
	iv := &models.Interview{
		ID:          uuid.NewString(),
		CandidateID: cand.ID,
		CampaignID:  cand.CampaignID,
		Status:      models.InterviewInProgress,
		StartedAt:   &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.interviews.Create(ctx, iv); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create interview", err)
	}

	if err := s.candidates.SetStatus(ctx, cand.ID, "interviewing"); err != nil {
		s.log.WithError(err).WithField("candidate_id", cand.ID).Warn("failed to mark candidate interviewing")
	}

	cctx, cancel := context.WithTimeout(ctx, initiateCallTimeout)
	defer cancel()

	callSID, err := s.calls.StartCall(cctx, telprovider.StartCallRequest{
		To:             cand.Phone,
		AnswerURL:      s.publicBaseURL + "/webhooks/call/start/" + iv.ID,
		StatusCallback: s.publicBaseURL + "/webhooks/call/status",
	})
	if err != nil {
		if serr := s.interviews.SetStatus(ctx, iv.ID, models.InterviewFailed); serr != nil {
			s.log.WithError(serr).WithField("interview_id", iv.ID).Warn("failed to mark interview failed")
		}
		return nil, utils.E(utils.CodeUnavailable, op, "failed to initiate call", err)
	}

	if err := s.interviews.SetCallSID(ctx, iv.ID, callSID); err != nil {
		s.log.WithError(err).WithField("interview_id", iv.ID).Warn("failed to save call sid")
	}
	iv.CallSID = callSID
	return iv, nil
}

func (s *interviewService) Get(ctx context.Context, id string) (*InterviewDetail, error) {
	const op = "InterviewService.Get"

	iv, err := s.interviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "interview not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load interview", err)
	}

	rows, err := s.responses.ListByInterview(ctx, id)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load responses", err)
	}

	detail := &InterviewDetail{Interview: *iv, Responses: make([]ResponseDetail, 0, len(rows))}
	for _, r := range rows {
		d := ResponseDetail{Response: r}
		if q, qerr := s.questions.GetByID(ctx, r.QuestionID); qerr == nil {
			d.QuestionText = q.Text
		}
		if s.signer != nil {
			if object, ok := objectFromGSURL(r.ArchiveURL); ok {
				if link, serr := s.signer.SignedGetURL(ctx, object, recordingLinkTTL); serr == nil {
					d.RecordingLink = link
				} else {
					s.log.WithError(serr).WithField("response_id", r.ID).Warn("failed to sign recording link")
				}
			}
		}
		detail.Responses = append(detail.Responses, d)
	}
	return detail, nil
}

// objectFromGSURL extracts the object name from a gs://bucket/object path.
func objectFromGSURL(u string) (string, bool) {
	const scheme = "gs://"
	if !strings.HasPrefix(u, scheme) {
		return "", false
	}
	rest := u[len(scheme):]
	i := strings.IndexByte(rest, '/')
	if i < 0 || i == len(rest)-1 {
		return "", false
	}
	return rest[i+1:], true
}

func (s *interviewService) Events(ctx context.Context, id string) ([]models.CallEvent, error) {
	const op = "InterviewService.Events"

	if s.events == nil {
		return nil, utils.E(utils.CodeUnavailable, op, "event journal is not configured", nil)
	}
	out, err := s.events.ListByInterview(ctx, id, 0)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list call events", err)
	}
	return out, nil
}
