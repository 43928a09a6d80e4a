package postgres

import (
	"context"
	"errors"

	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/utils"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	ListByCampaign(ctx context.Context, campaignID string) ([]models.Question, error)
	GetByID(ctx context.Context, id string) (*models.Question, error)
}

type questionRepo struct {
	db *gorm.DB
}

func NewQuestionRepo(db *gorm.DB) QuestionRepository {
	return &questionRepo{db: db}
}

// ListByCampaign returns the campaign's questions in ask order. Ordering by
// order_index must be stable for the whole interview.
func (r *questionRepo) ListByCampaign(ctx context.Context, campaignID string) ([]models.Question, error) {
	var rows []models.Question
	err := r.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("order_index ASC").
		Find(&rows).Error
	return rows, err
}

func (r *questionRepo) GetByID(ctx context.Context, id string) (*models.Question, error) {
	var q models.Question
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &q, err
}
