package postgres

import (
	"context"
	"errors"

	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/utils"
	"gorm.io/gorm"
)

type RecruiterRepository interface {
	Create(ctx context.Context, rec *models.Recruiter) error
	GetByEmail(ctx context.Context, email string) (*models.Recruiter, error)
}

type recruiterRepo struct {
	db *gorm.DB
}

func NewRecruiterRepo(db *gorm.DB) RecruiterRepository {
	return &recruiterRepo{db: db}
}

func (r *recruiterRepo) Create(ctx context.Context, rec *models.Recruiter) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *recruiterRepo) GetByEmail(ctx context.Context, email string) (*models.Recruiter, error) {
	var rec models.Recruiter
	err := r.db.WithContext(ctx).Where("email = ?", email).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &rec, err
}
