package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"projectpulse/internal/apperr"
	"projectpulse/internal/model"
	"projectpulse/internal/repository"
	"projectpulse/internal/util"
)

type Service struct {
	userRepo  *repository.UserRepository
	jwtSecret string
}

func NewService(userRepo *repository.UserRepository, jwtSecret string) *Service {
	return &Service{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
	}
}

// Register creates a new user.
func (s *Service) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	if name == "" || email == "" {
		return nil, apperr.Validation("name and email are required")
	}
	if len(password) < 6 {
		return nil, apperr.Validation("password must be at least 6 characters")
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.Transient("failed to check existing user", err)
	}
	if existing != nil {
		return nil, apperr.Validation("email already exists")
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.CreateUser(ctx, u); err != nil {
		return nil, apperr.Transient("failed to create user", err)
	}

	return u, nil
}

// Login checks user credentials and returns a JWT.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", apperr.Unauthorized("invalid email or password")
	}

	if !util.CheckPassword(password, u.PasswordHash) {
		return "", apperr.Unauthorized("invalid email or password")
	}

	token, err := util.GenerateJWT(u.ID, s.jwtSecret)
	if err != nil {
		return "", err
	}

	return token, nil
}
