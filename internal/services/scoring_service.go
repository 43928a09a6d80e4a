package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/providers/ai"
	"github.com/hirevox/hirevox/internal/providers/stt"
	pgrepo "github.com/hirevox/hirevox/internal/repositories/postgres"
	"github.com/hirevox/hirevox/internal/storage"
	"github.com/hirevox/hirevox/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const (
	analyzeTimeout   = 60 * time.Second
	assessTimeout    = 60 * time.Second
	downloadTimeout  = 30 * time.Second
	transcribeFloor  = 0.5 // below this the provider transcript is re-done
	maxRecordingSize = 25 << 20
)

// ScoringService is the synchronous scoring logic shared by the worker pool
// and tests. Both operations are safe to re-run: results are plain
// overwrites keyed by row id.
type ScoringService interface {
	ScoreResponse(ctx context.Context, responseID string) error
	FinalizeInterview(ctx context.Context, interviewID string) error
}

type scoringService struct {
	responses  pgrepo.ResponseRepository
	questions  pgrepo.QuestionRepository
	interviews pgrepo.InterviewRepository
	candidates pgrepo.CandidateRepository

	ai      ai.Provider
	stt     stt.Provider     // optional: recovery transcription
	archive storage.Archiver // optional: recording archive

	httpClient *http.Client
	log        *logrus.Logger
}

func NewScoringService(
	responses pgrepo.ResponseRepository,
	questions pgrepo.QuestionRepository,
	interviews pgrepo.InterviewRepository,
	candidates pgrepo.CandidateRepository,
	aiProvider ai.Provider,
	sttProvider stt.Provider,
	archive storage.Archiver,
	log *logrus.Logger,
) ScoringService {
	if log == nil {
		log = logrus.New()
	}
	return &scoringService{
		responses:  responses,
		questions:  questions,
		interviews: interviews,
		candidates: candidates,
		ai:         aiProvider,
		stt:        sttProvider,
		archive:    archive,
		httpClient: &http.Client{Timeout: downloadTimeout},
		log:        log,
	}
}

func (s *scoringService) ScoreResponse(ctx context.Context, responseID string) error {
	const op = "ScoringService.ScoreResponse"

	resp, err := s.responses.GetByID(ctx, responseID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "response not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to load response", err)
	}

	q, err := s.questions.GetByID(ctx, resp.QuestionID)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to load question", err)
	}

	transcript := resp.Transcript
	if resp.AudioURL != "" && (s.archive != nil || s.needsRetranscribe(resp)) {
		if recovered := s.processRecording(ctx, resp); recovered != "" {
			transcript = recovered
		}
	}

	actx, cancel := context.WithTimeout(ctx, analyzeTimeout)
	defer cancel()

	analysis, err := s.ai.AnalyzeResponse(actx, q.Text, transcript, q.Criteria)
	if err != nil {
		// score/analysis stay null; an unscored response is a terminal,
		// observable state
		return utils.E(utils.CodeUnavailable, op, "scoring collaborator failed", err)
	}

	if err := s.responses.SetScore(ctx, resp.ID, analysis.Score, analysis.Analysis); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to save score", err)
	}
	return nil
}

func (s *scoringService) needsRetranscribe(resp *models.Response) bool {
	return s.stt != nil && (resp.Transcript == "" || resp.Confidence < transcribeFloor)
}

// processRecording downloads the provider recording, archives it, and
// re-transcribes it when the captured transcript looks unreliable. Returns
// the recovered transcript, or "" when the original stands. Every failure
// here is logged and ignored; scoring proceeds with what was captured.
func (s *scoringService) processRecording(ctx context.Context, resp *models.Response) string {
	log := s.log.WithFields(logrus.Fields{
		"response_id":  resp.ID,
		"interview_id": resp.InterviewID,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resp.AudioURL, nil)
	if err != nil {
		log.WithError(err).Warn("bad recording url")
		return ""
	}
	httpResp, err := s.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("recording download failed")
		return ""
	}
	defer httpResp.Body.Close()

	audio, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxRecordingSize))
	if len(audio) == 0 {
		log.Warn("empty recording")
		return ""
	}

	if s.archive != nil {
		objectName := fmt.Sprintf("recordings/%s/%s.wav", resp.InterviewID, resp.QuestionID)
		stored, err := s.archive.Upload(ctx, objectName, "audio/wav", bytes.NewReader(audio))
		if err != nil {
			log.WithError(err).Warn("recording archive failed")
		} else if err := s.responses.SetArchiveURL(ctx, resp.ID, stored); err != nil {
			log.WithError(err).Warn("failed to save archive url")
		}
	}

	if s.needsRetranscribe(resp) {
		text, conf, err := s.stt.Transcribe(ctx, audio, "en-US")
		if err != nil {
			log.WithError(err).Warn("recovery transcription failed")
			return ""
		}
		if text != "" && conf > resp.Confidence {
			if err := s.responses.SetTranscript(ctx, resp.ID, text, conf); err != nil {
				log.WithError(err).Warn("failed to save recovered transcript")
			}
			return text
		}
	}
	return ""
}

func (s *scoringService) FinalizeInterview(ctx context.Context, interviewID string) error {
	const op = "ScoringService.FinalizeInterview"

	iv, err := s.interviews.GetByID(ctx, interviewID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "interview not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to load interview", err)
	}

	rows, err := s.responses.ListByInterview(ctx, interviewID)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to list responses", err)
	}

	items := make([]ai.ResponseSummary, 0, len(rows))
	for _, r := range rows {
		item := ai.ResponseSummary{Transcript: r.Transcript}
		if r.Score != nil {
			item.Score = *r.Score
		}
		if q, qerr := s.questions.GetByID(ctx, r.QuestionID); qerr == nil {
			item.Question = q.Text
		}
		items = append(items, item)
	}

	assessment := s.assess(ctx, interviewID, items)

	raw, err := json.Marshal(assessment)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to encode assessment", err)
	}

	err = s.interviews.SaveAssessment(ctx, interviewID,
		assessment.OverallScore, assessment.CommunicationScore, assessment.TechnicalScore,
		assessment.Recommendation, datatypes.JSON(raw))
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to save assessment", err)
	}

	if err := s.candidates.SetStatus(ctx, iv.CandidateID, "interviewed"); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to update candidate status", err)
	}
	return nil
}

// assess asks the collaborator for the aggregate recommendation and falls
// back to a locally computed one, so finalization always produces a result
// even for an interview with zero scored responses.
func (s *scoringService) assess(ctx context.Context, interviewID string, items []ai.ResponseSummary) *ai.Assessment {
	if len(items) > 0 {
		actx, cancel := context.WithTimeout(ctx, assessTimeout)
		defer cancel()

		out, err := s.ai.FinalAssessment(actx, items)
		if err == nil {
			return out
		}
		s.log.WithError(err).WithField("interview_id", interviewID).
			Warn("final assessment collaborator failed, using fallback")
	}

	var sum float64
	var scored int
	for _, it := range items {
		if it.Score > 0 {
			sum += it.Score
			scored++
		}
	}

	fallback := &ai.Assessment{Recommendation: "maybe", Summary: "automatic fallback assessment"}
	if scored > 0 {
		mean := sum / float64(scored)
		fallback.OverallScore = mean
		fallback.CommunicationScore = mean
		fallback.TechnicalScore = mean
		switch {
		case mean >= 7.5:
			fallback.Recommendation = "hire"
		case mean < 4:
			fallback.Recommendation = "no_hire"
		}
	}
	return fallback
}
