package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type InterviewRepository interface {
	Create(ctx context.Context, iv *models.Interview) error
	GetByID(ctx context.Context, id string) (*models.Interview, error)
	GetByCallSID(ctx context.Context, callSID string) (*models.Interview, error)
	LatestByCandidate(ctx context.Context, candidateID string) (*models.Interview, error)
	SetCallSID(ctx context.Context, id, callSID string) error
	SetStatus(ctx context.Context, id, status string) error
	SetCallDuration(ctx context.Context, id string, seconds int) error
	// MarkCompleted flips the interview to completed and stamps completed_at.
	// The conditional update keeps completed_at write-once under retried or
	// concurrent webhook delivery. Returns true when this call did the flip.
	MarkCompleted(ctx context.Context, id string, at time.Time) (bool, error)
	SaveAssessment(ctx context.Context, id string, overall, communication, technical float64, recommendation string, raw datatypes.JSON) error
}

type interviewRepo struct {
	db *gorm.DB
}

func NewInterviewRepo(db *gorm.DB) InterviewRepository {
	return &interviewRepo{db: db}
}

func (r *interviewRepo) Create(ctx context.Context, iv *models.Interview) error {
	return r.db.WithContext(ctx).Create(iv).Error
}

func (r *interviewRepo) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	var iv models.Interview
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&iv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &iv, err
}

func (r *interviewRepo) GetByCallSID(ctx context.Context, callSID string) (*models.Interview, error) {
	var iv models.Interview
	err := r.db.WithContext(ctx).Where("call_sid = ?", callSID).Take(&iv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &iv, err
}

func (r *interviewRepo) LatestByCandidate(ctx context.Context, candidateID string) (*models.Interview, error) {
	var iv models.Interview
	err := r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("created_at DESC").
		Take(&iv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &iv, err
}

func (r *interviewRepo) SetCallSID(ctx context.Context, id, callSID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Interview{}).
		Where("id = ?", id).
		Update("call_sid", callSID).Error
}

func (r *interviewRepo) SetStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Interview{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *interviewRepo) SetCallDuration(ctx context.Context, id string, seconds int) error {
	return r.db.WithContext(ctx).
		Model(&models.Interview{}).
		Where("id = ?", id).
		Update("call_duration", seconds).Error
}

func (r *interviewRepo) MarkCompleted(ctx context.Context, id string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Interview{}).
		Where("id = ? AND status <> ?", id, models.InterviewCompleted).
		Updates(map[string]any{
			"status":       models.InterviewCompleted,
			"completed_at": at.UTC(),
		})
	return res.RowsAffected > 0, res.Error
}

func (r *interviewRepo) SaveAssessment(ctx context.Context, id string, overall, communication, technical float64, recommendation string, raw datatypes.JSON) error {
	return r.db.WithContext(ctx).
		Model(&models.Interview{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"overall_score":       overall,
			"communication_score": communication,
			"technical_score":     technical,
			"recommendation":      recommendation,
			"assessment":          raw,
		}).Error
}
