package service

import (
	"context"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"smartcharge/backend/services/reservation-service/internal/models"
)

// Leaderboard size bounds.
const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// UserService serves profiles, the leaderboard and the badge catalogue.
type UserService struct {
	users  UserStore
	badges BadgeStore
	logger *zap.Logger
}

// NewUserService builds UserService.
func NewUserService(users UserStore, badges BadgeStore, logger *zap.Logger) *UserService {
	return &UserService{users: users, badges: badges, logger: logger}
}

// Profile returns a user with badges.
func (s *UserService) Profile(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, translate("user: profile", err)
	}
	return user, nil
}

// UpdateProfile edits the caller's own name and email. Ledger fields are never touched.
func (s *UserService) UpdateProfile(ctx context.Context, actor Actor, id int64, name, email string) (*models.User, error) {
	if actor.UserID != id {
		return nil, ErrForbidden
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, invalid("email", "is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("email", "is not a valid address")
	}
	user, err := s.users.UpdateProfile(ctx, id, name, email)
	if err != nil {
		return nil, translate("user: update profile", err)
	}
	s.logger.Info("profile updated", zap.Int64("user_id", id))
	return user, nil
}

// Leaderboard ranks users by XP. A non-positive limit selects the default.
func (s *UserService) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}
	entries, err := s.users.Leaderboard(ctx, limit)
	if err != nil {
		return nil, translate("user: leaderboard", err)
	}
	return entries, nil
}

// Badges returns the badge catalogue.
func (s *UserService) Badges(ctx context.Context) ([]models.Badge, error) {
	badges, err := s.badges.List(ctx)
	if err != nil {
		return nil, translate("user: badges", err)
	}
	return badges, nil
}
