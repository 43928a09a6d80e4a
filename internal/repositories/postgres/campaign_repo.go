package postgres

import (
	"context"
	"errors"

	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/utils"
	"gorm.io/gorm"
)

type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign, questions []models.Question) error
	GetByID(ctx context.Context, id string) (*models.Campaign, error)
	List(ctx context.Context) ([]models.Campaign, error)
	CountQuestions(ctx context.Context, campaignID string) (int64, error)
	CountCandidates(ctx context.Context, campaignID string) (int64, error)
}

type campaignRepo struct {
	db *gorm.DB
}

func NewCampaignRepo(db *gorm.DB) CampaignRepository {
	return &campaignRepo{db: db}
}

// Create persists the campaign and its generated questions in one
// transaction; a half-created campaign with no questions is never visible.
func (r *campaignRepo) Create(ctx context.Context, campaign *models.Campaign, questions []models.Question) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(campaign).Error; err != nil {
			return err
		}
		if len(questions) == 0 {
			return nil
		}
		return tx.Create(&questions).Error
	})
}

func (r *campaignRepo) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	var c models.Campaign
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &c, err
}

func (r *campaignRepo) List(ctx context.Context) ([]models.Campaign, error) {
	var rows []models.Campaign
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *campaignRepo) CountQuestions(ctx context.Context, campaignID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("campaign_id = ?", campaignID).
		Count(&n).Error
	return n, err
}

func (r *campaignRepo) CountCandidates(ctx context.Context, campaignID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Candidate{}).
		Where("campaign_id = ?", campaignID).
		Count(&n).Error
	return n, err
}
