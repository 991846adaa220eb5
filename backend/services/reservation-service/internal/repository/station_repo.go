package repository

import (
	"context"
	"database/sql"
	"errors"

	"smartcharge/backend/services/reservation-service/internal/models"
)

// StationRepository handles CRUD for the stations table.
type StationRepository struct {
	db *sql.DB
}

// NewStationRepository returns repository.
func NewStationRepository(db *sql.DB) *StationRepository {
	return &StationRepository{db: db}
}

const stationColumns = `id, name, address, latitude, longitude, price, owner_id, density, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStation(row rowScanner) (*models.Station, error) {
	var s models.Station
	if err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Address,
		&s.Latitude,
		&s.Longitude,
		&s.Price,
		&s.OwnerID,
		&s.Density,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns every station ordered by name.
func (r *StationRepository) List(ctx context.Context) ([]models.Station, error) {
	const query = `SELECT ` + stationColumns + ` FROM stations ORDER BY name, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stations := make([]models.Station, 0)
	for rows.Next() {
		s, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		stations = append(stations, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stations, nil
}

// GetByID fetches a station.
func (r *StationRepository) GetByID(ctx context.Context, id int64) (*models.Station, error) {
	const query = `SELECT ` + stationColumns + ` FROM stations WHERE id = $1`
	s, err := scanStation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}
	return s, nil
}

// Create inserts a station and fills generated fields.
func (r *StationRepository) Create(ctx context.Context, s *models.Station) error {
	const query = `
		INSERT INTO stations (name, address, latitude, longitude, price, owner_id, density, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		s.Name,
		s.Address,
		s.Latitude,
		s.Longitude,
		s.Price,
		s.OwnerID,
		s.Density,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// Update overwrites the editable columns of a station owned by s.OwnerID.
func (r *StationRepository) Update(ctx context.Context, s *models.Station) error {
	const query = `
		UPDATE stations
		SET name = $3,
		    address = $4,
		    latitude = $5,
		    longitude = $6,
		    price = $7,
		    density = $8,
		    updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		s.ID,
		s.OwnerID,
		s.Name,
		s.Address,
		s.Latitude,
		s.Longitude,
		s.Price,
		s.Density,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return r.ownershipError(ctx, s.ID)
	}
	return err
}

// Delete removes a station owned by ownerID. Stations with reservations cannot be deleted.
func (r *StationRepository) Delete(ctx context.Context, id, ownerID int64) error {
	const query = `DELETE FROM stations WHERE id = $1 AND owner_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return ErrConflict
		}
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return r.ownershipError(ctx, id)
	}
	return nil
}

// ownershipError tells a missing station apart from one owned by someone else.
func (r *StationRepository) ownershipError(ctx context.Context, id int64) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrForbidden
}
