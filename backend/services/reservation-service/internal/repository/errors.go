package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrUserNotFound represents missing user rows.
	ErrUserNotFound = errors.New("user not found")
	// ErrStationNotFound represents missing station rows.
	ErrStationNotFound = errors.New("station not found")
	// ErrReservationNotFound represents missing reservation rows.
	ErrReservationNotFound = errors.New("reservation not found")
	// ErrCampaignNotFound represents missing campaign rows.
	ErrCampaignNotFound = errors.New("campaign not found")
	// ErrBadgeNotFound is returned when a campaign targets an unknown badge.
	ErrBadgeNotFound = errors.New("badge not found")
	// ErrForbidden is returned when the caller does not own the row it tries to change.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict is returned when dependent rows block the write.
	ErrConflict = errors.New("conflict")
	// ErrEmailTaken is returned when a profile update collides with another user's email.
	ErrEmailTaken = errors.New("email already in use")
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// campaignFKError maps a foreign key violation on campaigns or campaign_badges to the missing row.
func campaignFKError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgForeignKeyViolation {
		return err
	}
	if strings.Contains(pgErr.ConstraintName, "badge") {
		return ErrBadgeNotFound
	}
	return ErrStationNotFound
}
