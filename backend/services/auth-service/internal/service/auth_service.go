package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"smartcharge/backend/services/auth-service/internal/models"
	"smartcharge/backend/services/auth-service/internal/repository"
)

var (
	// ErrEmailRequired is returned when login is attempted without an email.
	ErrEmailRequired = errors.New("auth: email required")
	// ErrUnknownUser is returned when no account matches the email.
	ErrUnknownUser = errors.New("auth: unknown user")
)

// UserRepository defines storage contract used by the service.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetOrCreate(ctx context.Context, user *models.User) (*models.User, error)
}

// DemoAccount describes the driver handed out by Demo.
type DemoAccount struct {
	Name  string
	Email string
}

// Session is an issued token together with the user it identifies.
type Session struct {
	Token     string
	TokenType string
	User      *models.User
}

// AuthService resolves identities and issues tokens.
type AuthService struct {
	repo      UserRepository
	tokenizer *TokenService
	demo      DemoAccount
	logger    *zap.Logger
}

// NewAuthService builds AuthService.
func NewAuthService(repo UserRepository, tokenizer *TokenService, demo DemoAccount, logger *zap.Logger) *AuthService {
	return &AuthService{
		repo:      repo,
		tokenizer: tokenizer,
		demo:      demo,
		logger:    logger,
	}
}

// Login looks a user up by email and issues a token for it.
func (s *AuthService) Login(ctx context.Context, email string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrEmailRequired
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	session, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user logged in", zap.Int64("user_id", user.ID), zap.String("role", user.Role))
	return session, nil
}

// Demo returns a token for the demo driver, creating the account on first use.
func (s *AuthService) Demo(ctx context.Context) (*Session, error) {
	user, err := s.repo.GetOrCreate(ctx, &models.User{
		Name:  s.demo.Name,
		Email: s.demo.Email,
		Role:  models.RoleDriver,
	})
	if err != nil {
		return nil, err
	}

	session, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("demo session issued", zap.Int64("user_id", user.ID))
	return session, nil
}

func (s *AuthService) issue(user *models.User) (*Session, error) {
	token, err := s.tokenizer.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, TokenType: "Bearer", User: user}, nil
}
