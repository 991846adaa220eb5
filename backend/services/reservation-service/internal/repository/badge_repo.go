package repository

import (
	"context"
	"database/sql"

	"smartcharge/backend/services/reservation-service/internal/models"
)

// BadgeRepository reads the badge catalogue.
type BadgeRepository struct {
	db *sql.DB
}

// NewBadgeRepository returns repository.
func NewBadgeRepository(db *sql.DB) *BadgeRepository {
	return &BadgeRepository{db: db}
}

// List returns every badge.
func (r *BadgeRepository) List(ctx context.Context) ([]models.Badge, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description, icon FROM badges ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBadges(rows)
}

func scanBadges(rows *sql.Rows) ([]models.Badge, error) {
	badges := make([]models.Badge, 0)
	for rows.Next() {
		var b models.Badge
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.Icon); err != nil {
			return nil, err
		}
		badges = append(badges, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return badges, nil
}
