package postgres

import (
	"context"
	"errors"

	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResponseRepository interface {
	// Upsert creates the (interview, question) row or overwrites its captured
	// fields. Score and analysis columns are never touched here; they belong
	// to the scoring worker.
	Upsert(ctx context.Context, resp *models.Response) (*models.Response, error)
	GetByID(ctx context.Context, id string) (*models.Response, error)
	ListByInterview(ctx context.Context, interviewID string) ([]models.Response, error)
	SetScore(ctx context.Context, id string, score float64, analysis string) error
	SetTranscript(ctx context.Context, id, transcript string, confidence float64) error
	SetArchiveURL(ctx context.Context, id, archiveURL string) error
}

type responseRepo struct {
	db *gorm.DB
}

func NewResponseRepo(db *gorm.DB) ResponseRepository {
	return &responseRepo{db: db}
}

func (r *responseRepo) Upsert(ctx context.Context, resp *models.Response) (*models.Response, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "interview_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"transcript", "confidence", "audio_url", "duration", "updated_at"}),
		}).
		Create(resp).Error
	if err != nil {
		return nil, err
	}

	// Re-read so the caller sees the surviving row's id on a conflict.
	var row models.Response
	err = r.db.WithContext(ctx).
		Where("interview_id = ? AND question_id = ?", resp.InterviewID, resp.QuestionID).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *responseRepo) GetByID(ctx context.Context, id string) (*models.Response, error) {
	var row models.Response
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *responseRepo) ListByInterview(ctx context.Context, interviewID string) ([]models.Response, error) {
	var rows []models.Response
	err := r.db.WithContext(ctx).
		Where("interview_id = ?", interviewID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *responseRepo) SetScore(ctx context.Context, id string, score float64, analysis string) error {
	return r.db.WithContext(ctx).
		Model(&models.Response{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"score":    score,
			"analysis": analysis,
		}).Error
}

func (r *responseRepo) SetTranscript(ctx context.Context, id, transcript string, confidence float64) error {
	return r.db.WithContext(ctx).
		Model(&models.Response{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"transcript": transcript,
			"confidence": confidence,
		}).Error
}

func (r *responseRepo) SetArchiveURL(ctx context.Context, id, archiveURL string) error {
	return r.db.WithContext(ctx).
		Model(&models.Response{}).
		Where("id = ?", id).
		Update("archive_url", archiveURL).Error
}
