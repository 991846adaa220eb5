package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"smartcharge/backend/services/auth-service/internal/models"
)

// ErrUserNotFound represents missing user rows.
var ErrUserNotFound = errors.New("user not found")

const userColumns = `id, name, email, role, coins, xp, co2_saved, created_at`

// UserRepository reads accounts from the users table shared with reservation-service.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository returns repository instance.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByEmail fetches a user by email, case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = $1 LIMIT 1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, normalizeEmail(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetOrCreate returns the user with user.Email, inserting user when none exists yet.
// Concurrent callers converge on a single row.
func (r *UserRepository) GetOrCreate(ctx context.Context, user *models.User) (*models.User, error) {
	const query = `
		INSERT INTO users (name, email, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRowContext(ctx, query, user.Name, normalizeEmail(user.Email), user.Role))
}

func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.Coins,
		&user.XP,
		&user.CO2Saved,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
