package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hirevox/hirevox/internal/models"
	pgrepo "github.com/hirevox/hirevox/internal/repositories/postgres"
	"github.com/hirevox/hirevox/internal/utils"
)

const tokenLifetime = 24 * time.Hour

type AuthService interface {
	Register(ctx context.Context, email, name, password string, role models.RecruiterRole) (*models.Recruiter, error)
	Login(ctx context.Context, email, password string) (token string, rec *models.Recruiter, err error)
}

type authService struct {
	recruiters pgrepo.RecruiterRepository
	jwtSecret  []byte
}

func NewAuthService(recruiters pgrepo.RecruiterRepository, jwtSecret string) AuthService {
	return &authService{recruiters: recruiters, jwtSecret: []byte(jwtSecret)}
}

func (s *authService) Register(ctx context.Context, email, name, password string, role models.RecruiterRole) (*models.Recruiter, error) {
	const op = "AuthService.Register"

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "email and password are required", nil)
	}
	if len(password) < 8 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "password must be at least 8 characters", nil)
	}
	if role == "" {
		role = models.RoleRecruiter
	}

	if _, err := s.recruiters.GetByEmail(ctx, email); err == nil {
		return nil, utils.E(utils.CodeConflict, op, "email already registered", nil)
	} else if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to check email", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to hash password", err)
	}

	rec := &models.Recruiter{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.recruiters.Create(ctx, rec); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create recruiter", err)
	}
	return rec, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *models.Recruiter, error) {
	const op = "AuthService.Login"

	email = strings.ToLower(strings.TrimSpace(email))
	rec, err := s.recruiters.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return "", nil, utils.E(utils.CodeUnauthorized, op, "invalid credentials", nil)
		}
		return "", nil, utils.E(utils.CodeInternal, op, "failed to load recruiter", err)
	}

	if err := utils.CheckPassword(rec.PasswordHash, password); err != nil {
		return "", nil, utils.E(utils.CodeUnauthorized, op, "invalid credentials", nil)
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   rec.ID,
		"email": rec.Email,
		"role":  string(rec.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(tokenLifetime).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, utils.E(utils.CodeInternal, op, "failed to sign token", err)
	}
	return token, rec, nil
}
