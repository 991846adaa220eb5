package service

import (
	"context"

	"smartcharge/backend/services/reservation-service/internal/models"
	"smartcharge/backend/services/reservation-service/internal/repository"
)

// StationStore is the station persistence contract.
type StationStore interface {
	List(ctx context.Context) ([]models.Station, error)
	GetByID(ctx context.Context, id int64) (*models.Station, error)
	Create(ctx context.Context, s *models.Station) error
	Update(ctx context.Context, s *models.Station) error
	Delete(ctx context.Context, id, ownerID int64) error
}

// ReservationStore persists reservations together with their ledger credits.
type ReservationStore interface {
	CreateWithCredit(ctx context.Context, res *models.Reservation, credit models.LedgerCredit) (*models.LedgerSnapshot, error)
	Transition(ctx context.Context, id int64, decide repository.DecideFunc) (*repository.TransitionResult, error)
	GetByID(ctx context.Context, id int64) (*models.Reservation, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Reservation, error)
}

// CampaignStore is the campaign persistence contract.
type CampaignStore interface {
	ListActive(ctx context.Context) ([]models.Campaign, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Campaign, error)
	GetByID(ctx context.Context, id int64) (*models.Campaign, error)
	Create(ctx context.Context, c *models.Campaign) error
	Update(ctx context.Context, c *models.Campaign) error
	Delete(ctx context.Context, id, ownerID int64) error
}

// UserStore reads users and edits profiles.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, name, email string) (*models.User, error)
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

// BadgeStore reads the badge catalogue.
type BadgeStore interface {
	List(ctx context.Context) ([]models.Badge, error)
}

// Actor is the authenticated caller.
type Actor struct {
	UserID int64
	Role   string
}

// IsOperator reports whether the caller manages stations.
func (a Actor) IsOperator() bool {
	return a.Role == models.RoleOperator
}

func requireOperator(actor Actor) error {
	if actor.UserID <= 0 || !actor.IsOperator() {
		return ErrForbidden
	}
	return nil
}
