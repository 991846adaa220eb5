package repository

import (
	"context"
	"database/sql"
	"errors"

	"smartcharge/backend/services/reservation-service/internal/models"
)

// UserRepository reads users and edits profile fields. Ledger columns are written only by
// ReservationRepository.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository returns repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, role, coins, xp, co2_saved, created_at`

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	if err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Role,
		&u.Coins,
		&u.XP,
		&u.CO2Saved,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID fetches a user together with held badges.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	badges, err := r.badges(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Badges = badges
	return u, nil
}

func (r *UserRepository) badges(ctx context.Context, userID int64) ([]models.Badge, error) {
	const query = `
		SELECT b.id, b.name, b.description, b.icon
		FROM badges b
		JOIN user_badges ub ON ub.badge_id = b.id
		WHERE ub.user_id = $1
		ORDER BY b.id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBadges(rows)
}

// UpdateProfile changes name and email only.
func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, name, email string) (*models.User, error) {
	const query = `
		UPDATE users
		SET name = $2, email = $3
		WHERE id = $1
		RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id, name, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		if pgCode(err) == pgUniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	badges, err := r.badges(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Badges = badges
	return u, nil
}

// Leaderboard returns the top users by XP. Ties are broken by coins, then id.
func (r *UserRepository) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	const query = `
		SELECT id, name, xp, coins, co2_saved
		FROM users
		ORDER BY xp DESC, coins DESC, id ASC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Name, &e.XP, &e.Coins, &e.CO2Saved); err != nil {
			return nil, err
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
