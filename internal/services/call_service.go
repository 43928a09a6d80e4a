package services

import (
	"context"
	"errors"
	"time"

	"github.com/hirevox/hirevox/internal/callcontext"
	"github.com/hirevox/hirevox/internal/models"
	mongorepo "github.com/hirevox/hirevox/internal/repositories/mongo"
	pgrepo "github.com/hirevox/hirevox/internal/repositories/postgres"
	"github.com/hirevox/hirevox/internal/scoring"
	"github.com/hirevox/hirevox/internal/telephony"
	"github.com/hirevox/hirevox/internal/utils"
	"github.com/sirupsen/logrus"
)

// completedGrace is how long a finished interview's context stays around
// for late provider retries before the store evicts it.
const completedGrace = 10 * time.Minute

const journalTimeout = 3 * time.Second

// CapturedResponse carries the provider's speech-capture form fields.
type CapturedResponse struct {
	Transcript   string
	Confidence   float64
	RecordingURL string
	Duration     int
}

// CallService is the orchestration state machine behind the call webhooks.
// Every step returns a non-nil instruction document even when it also
// returns an error: the live call must always receive something valid to
// execute, and the error exists only for logging.
type CallService interface {
	HandleCallStart(ctx context.Context, interviewID string) (*telephony.Document, error)
	HandleQuestion(ctx context.Context, interviewID string) (*telephony.Document, error)
	HandleResponse(ctx context.Context, interviewID string, questionIndex int, in CapturedResponse) (*telephony.Document, error)
	HandleNext(ctx context.Context, interviewID string) (*telephony.Document, error)
	HandleCallStatus(ctx context.Context, callSID, callStatus string, durationSec int) error
}

type callService struct {
	interviews pgrepo.InterviewRepository
	candidates pgrepo.CandidateRepository
	questions  pgrepo.QuestionRepository

	store      callcontext.Store
	recorder   ResponseRecorder
	dispatcher scoring.Dispatcher
	gen        *telephony.Generator

	events mongorepo.CallEventRepository // optional journal
	log    *logrus.Logger
}

func NewCallService(
	interviews pgrepo.InterviewRepository,
	candidates pgrepo.CandidateRepository,
	questions pgrepo.QuestionRepository,
	store callcontext.Store,
	recorder ResponseRecorder,
	dispatcher scoring.Dispatcher,
	gen *telephony.Generator,
	events mongorepo.CallEventRepository,
	log *logrus.Logger,
) CallService {
	if log == nil {
		log = logrus.New()
	}
	return &callService{
		interviews: interviews,
		candidates: candidates,
		questions:  questions,
		store:      store,
		recorder:   recorder,
		dispatcher: dispatcher,
		gen:        gen,
		events:     events,
		log:        log,
	}
}

func (s *callService) HandleCallStart(ctx context.Context, interviewID string) (*telephony.Document, error) {
	const op = "CallService.HandleCallStart"
	const startFailed = "Sorry, there was an error starting the interview. Please try again later. Goodbye."

	iv, err := s.interviews.GetByID(ctx, interviewID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return s.gen.ErrorHangup(startFailed), utils.E(utils.CodeNotFound, op, "interview not found", err)
		}
		return s.gen.ErrorHangup(startFailed), utils.E(utils.CodeUnavailable, op, "failed to load interview", err)
	}

	cand, err := s.candidates.GetByID(ctx, iv.CandidateID)
	if err != nil {
		return s.gen.ErrorHangup(startFailed), utils.E(utils.CodeUnavailable, op, "failed to load candidate", err)
	}

	qs, err := s.questions.ListByCampaign(ctx, iv.CampaignID)
	if err != nil {
		return s.gen.ErrorHangup(startFailed), utils.E(utils.CodeUnavailable, op, "failed to load questions", err)
	}
	if len(qs) == 0 {
		return s.gen.ErrorHangup(startFailed), utils.E(utils.CodeInternal, op, "campaign has no questions", nil)
	}

	// establish the context eagerly so it exists before the first capture
	snapshot := make([]models.ContextQuestion, len(qs))
	for i, q := range qs {
		snapshot[i] = models.ContextQuestion{ID: q.ID, Text: q.Text, Index: i}
	}
	cc := &models.CallContext{
		InterviewID:   iv.ID,
		CampaignID:    iv.CampaignID,
		CandidateName: cand.Name,
		Questions:     snapshot,
		Cursor:        0,
	}
	if err := s.store.Put(ctx, iv.ID, cc); err != nil {
		return s.gen.ErrorHangup(startFailed), utils.E(utils.CodeUnavailable, op, "failed to store call context", err)
	}

	if iv.Status == models.InterviewPending {
		if err := s.interviews.SetStatus(ctx, iv.ID, models.InterviewInProgress); err != nil {
			s.log.WithError(err).WithField("interview_id", iv.ID).Warn("failed to mark interview in progress")
		}
	}

	s.journal(iv.ID, "call_start", nil, "", "welcome delivered", nil)
	return s.gen.Welcome(cand.Name, iv.ID), nil
}

func (s *callService) HandleQuestion(ctx context.Context, interviewID string) (*telephony.Document, error) {
	const op = "CallService.HandleQuestion"
	const questionFailed = "Sorry, there was an error with the question. Moving to the next one."

	cc, err := s.store.Get(ctx, interviewID)
	if err != nil {
		if errors.Is(err, callcontext.ErrNotFound) {
			err = utils.E(utils.CodeNotFound, op, "call context not found", err)
		} else {
			err = utils.E(utils.CodeUnavailable, op, "failed to load call context", err)
		}
		s.journal(interviewID, "question", nil, "", "", err)
		return s.gen.ErrorRedirect(questionFailed, interviewID), err
	}

	if cc.Done() {
		s.completeInterview(ctx, interviewID)
		s.journal(interviewID, "question", nil, "", "completion delivered", nil)
		return s.gen.Completion(), nil
	}

	q := cc.Questions[cc.Cursor]
	s.journal(interviewID, "question", &q.Index, "", "question delivered", nil)
	return s.gen.Question(q.Text, interviewID, cc.Cursor, len(cc.Questions)), nil
}

func (s *callService) HandleResponse(ctx context.Context, interviewID string, questionIndex int, in CapturedResponse) (*telephony.Document, error) {
	const op = "CallService.HandleResponse"
	const captureFailed = "Thank you for your response. Let's continue with the next question."

	fail := func(code utils.Code, msg string, cause error) (*telephony.Document, error) {
		err := utils.E(code, op, msg, cause)
		s.journal(interviewID, "response", &questionIndex, "", "", err)
		return s.gen.ErrorRedirect(captureFailed, interviewID), err
	}

	cc, err := s.store.Get(ctx, interviewID)
	if err != nil {
		if errors.Is(err, callcontext.ErrNotFound) {
			return fail(utils.CodeNotFound, "call context not found", err)
		}
		return fail(utils.CodeUnavailable, "failed to load call context", err)
	}

	// stale indices arrive on provider retries; anything outside the
	// snapshot is unanswerable
	if questionIndex < 0 || questionIndex >= len(cc.Questions) {
		return fail(utils.CodeInvalidIndex, "question index out of range", nil)
	}
	q := cc.Questions[questionIndex]

	rec, err := s.recorder.Record(ctx, RecordParams{
		InterviewID: interviewID,
		QuestionID:  q.ID,
		Transcript:  in.Transcript,
		Confidence:  in.Confidence,
		AudioURL:    in.RecordingURL,
		Duration:    in.Duration,
	})
	if err != nil {
		return fail(utils.CodeUnavailable, "failed to record response", err)
	}

	// Advance only if this capture is the one the cursor is waiting on.
	// The atomic update is what keeps a duplicate or concurrent delivery
	// from advancing twice; the cursor is persisted before any reply is
	// composed, so a crash after this point cannot regress it.
	advanced := false
	updated, err := s.store.Update(ctx, interviewID, func(cc *models.CallContext) error {
		if cc.Cursor == questionIndex {
			cc.Cursor++
			advanced = true
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, callcontext.ErrNotFound) {
			return fail(utils.CodeNotFound, "call context expired mid-call", err)
		}
		return fail(utils.CodeUnavailable, "failed to advance call context", err)
	}

	if advanced {
		if derr := s.dispatcher.DispatchScoreResponse(ctx, rec.ID); derr != nil {
			s.log.WithError(derr).WithField("response_id", rec.ID).Warn("failed to dispatch response scoring")
		}
	}

	s.journal(interviewID, "response", &questionIndex, "", "response captured", nil)

	if updated.Done() {
		if advanced {
			s.completeInterview(ctx, interviewID)
		}
		return s.gen.Completion(), nil
	}

	next := updated.Questions[updated.Cursor]
	return s.gen.Question(next.Text, interviewID, updated.Cursor, len(updated.Questions)), nil
}

func (s *callService) HandleNext(ctx context.Context, interviewID string) (*telephony.Document, error) {
	const op = "CallService.HandleNext"
	const nextFailed = "Thank you for your time. The interview is now complete. Goodbye."

	_, err := s.store.Update(ctx, interviewID, func(cc *models.CallContext) error {
		if cc.Cursor < len(cc.Questions) {
			cc.Cursor++
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, callcontext.ErrNotFound) {
			err = utils.E(utils.CodeNotFound, op, "call context not found", err)
		} else {
			err = utils.E(utils.CodeUnavailable, op, "failed to advance call context", err)
		}
		s.journal(interviewID, "next", nil, "", "", err)
		return s.gen.ErrorHangup(nextFailed), err
	}

	s.journal(interviewID, "next", nil, "", "manual advance", nil)
	return s.gen.NextQuestion(interviewID), nil
}

func (s *callService) HandleCallStatus(ctx context.Context, callSID, callStatus string, durationSec int) error {
	const op = "CallService.HandleCallStatus"

	if callSID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "call sid is required", nil)
	}

	iv, err := s.interviews.GetByCallSID(ctx, callSID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "no interview for call sid", err)
		}
		return utils.E(utils.CodeUnavailable, op, "failed to correlate call sid", err)
	}

	if durationSec > 0 {
		if err := s.interviews.SetCallDuration(ctx, iv.ID, durationSec); err != nil {
			s.log.WithError(err).WithField("interview_id", iv.ID).Warn("failed to save call duration")
		}
	}

	switch callStatus {
	case "failed", "busy", "no-answer", "canceled":
		if iv.Status == models.InterviewPending || iv.Status == models.InterviewInProgress {
			if err := s.interviews.SetStatus(ctx, iv.ID, models.InterviewFailed); err != nil {
				s.log.WithError(err).WithField("interview_id", iv.ID).Warn("failed to mark interview failed")
			}
		}
	}

	s.journal(iv.ID, "status", nil, callSID, callStatus, nil)
	return nil
}

// completeInterview flips the durable record and schedules finalization.
// MarkCompleted is conditional, so only the first caller dispatches.
func (s *callService) completeInterview(ctx context.Context, interviewID string) {
	flipped, err := s.interviews.MarkCompleted(ctx, interviewID, time.Now().UTC())
	if err != nil {
		s.log.WithError(err).WithField("interview_id", interviewID).Warn("failed to mark interview completed")
		return
	}
	if !flipped {
		return
	}

	if err := s.dispatcher.DispatchFinalize(ctx, interviewID); err != nil {
		s.log.WithError(err).WithField("interview_id", interviewID).Warn("failed to dispatch finalization")
	}
	if err := s.store.Expire(ctx, interviewID, completedGrace); err != nil {
		s.log.WithError(err).WithField("interview_id", interviewID).Warn("failed to shorten context ttl")
	}
}

// journal appends a best-effort event outside the reply path.
func (s *callService) journal(interviewID, step string, questionIndex *int, callSID, detail string, cause error) {
	if s.events == nil {
		return
	}

	ev := &models.CallEvent{
		InterviewID:   interviewID,
		Step:          step,
		QuestionIndex: questionIndex,
		CallSID:       callSID,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
		ExpiresAt:     time.Now().UTC().Add(30 * 24 * time.Hour),
	}
	if cause != nil {
		ev.Error = cause.Error()
	}

	go func() {
		jctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
		defer cancel()
		if err := s.events.Insert(jctx, ev); err != nil {
			s.log.WithError(err).WithField("interview_id", interviewID).Debug("call event journal write failed")
		}
	}()
}
