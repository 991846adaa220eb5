package repository

import (
	"context"
	"database/sql"
	"errors"

	libdb "smartcharge/backend/libs/db"
	"smartcharge/backend/services/reservation-service/internal/models"
)

// TransitionDecision is what a DecideFunc wants done with a locked reservation.
type TransitionDecision struct {
	Apply  bool
	To     models.ReservationStatus
	Credit models.LedgerCredit
}

// DecideFunc inspects the current row, while it is locked, and decides the transition.
type DecideFunc func(current models.Reservation) (TransitionDecision, error)

// TransitionResult is the outcome of Transition. Ledger is nil when nothing was credited.
type TransitionResult struct {
	Reservation *models.Reservation
	Ledger      *models.LedgerSnapshot
	Applied     bool
}

// ReservationRepository persists reservations and the ledger writes tied to them.
type ReservationRepository struct {
	db *sql.DB
}

// NewReservationRepository returns repository.
func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

const reservationColumns = `id, user_id, station_id, date, hour, is_green, earned_coins, status, created_at, updated_at`

func scanReservation(row rowScanner) (*models.Reservation, error) {
	var res models.Reservation
	if err := row.Scan(
		&res.ID,
		&res.UserID,
		&res.StationID,
		&res.Date,
		&res.Hour,
		&res.IsGreen,
		&res.EarnedCoins,
		&res.Status,
		&res.CreatedAt,
		&res.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &res, nil
}

// CreateWithCredit inserts res and credits its owner in one transaction.
func (r *ReservationRepository) CreateWithCredit(ctx context.Context, res *models.Reservation, credit models.LedgerCredit) (*models.LedgerSnapshot, error) {
	const insertQuery = `
		INSERT INTO reservations (user_id, station_id, date, hour, is_green, earned_coins, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	var ledger *models.LedgerSnapshot
	err := libdb.WithTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		var err error
		// Crediting first locks the user row and reports a missing user before the FK would.
		ledger, err = creditTx(ctx, tx, res.UserID, credit)
		if err != nil {
			return err
		}
		err = tx.QueryRowContext(ctx, insertQuery,
			res.UserID,
			res.StationID,
			res.Date,
			res.Hour,
			res.IsGreen,
			res.EarnedCoins,
			res.Status,
		).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
		if err != nil {
			if pgCode(err) == pgForeignKeyViolation {
				return ErrStationNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ledger, nil
}

// Transition locks the reservation row, asks decide what to do and applies the status change
// and ledger credit atomically. The status update is guarded by the previous status so a
// credit is never applied twice for the same change.
func (r *ReservationRepository) Transition(ctx context.Context, id int64, decide DecideFunc) (*TransitionResult, error) {
	const selectQuery = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1 FOR UPDATE`
	const updateQuery = `
		UPDATE reservations
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING updated_at
	`
	var result *TransitionResult
	err := libdb.WithTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		res, err := scanReservation(tx.QueryRowContext(ctx, selectQuery, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrReservationNotFound
			}
			return err
		}

		decision, err := decide(*res)
		if err != nil {
			return err
		}
		if !decision.Apply {
			result = &TransitionResult{Reservation: res}
			return nil
		}

		if err := tx.QueryRowContext(ctx, updateQuery, id, res.Status, decision.To).Scan(&res.UpdatedAt); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrConflict
			}
			return err
		}
		res.Status = decision.To

		var ledger *models.LedgerSnapshot
		if !decision.Credit.IsZero() {
			ledger, err = creditTx(ctx, tx, res.UserID, decision.Credit)
			if err != nil {
				return err
			}
		}
		result = &TransitionResult{Reservation: res, Ledger: ledger, Applied: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID fetches a reservation.
func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*models.Reservation, error) {
	const query = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	res, err := scanReservation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

// ListByUser returns a user's reservations, newest first.
func (r *ReservationRepository) ListByUser(ctx context.Context, userID int64) ([]models.Reservation, error) {
	const query = `SELECT ` + reservationColumns + ` FROM reservations WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]models.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reservations, nil
}

// creditTx adds credit to the user's ledger. Balances only ever grow.
func creditTx(ctx context.Context, tx *sql.Tx, userID int64, credit models.LedgerCredit) (*models.LedgerSnapshot, error) {
	const query = `
		UPDATE users
		SET coins = coins + $2,
		    xp = xp + $3,
		    co2_saved = co2_saved + $4
		WHERE id = $1
		RETURNING id, coins, co2_saved, xp
	`
	var snap models.LedgerSnapshot
	err := tx.QueryRowContext(ctx, query, userID, credit.Coins, credit.XP, credit.CO2Saved).
		Scan(&snap.ID, &snap.Coins, &snap.CO2Saved, &snap.XP)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &snap, nil
}
