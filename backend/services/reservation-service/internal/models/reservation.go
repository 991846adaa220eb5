package models

import "time"

// ReservationStatus enumerates reservation states.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "PENDING"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusCompleted ReservationStatus = "COMPLETED"
	StatusCancelled ReservationStatus = "CANCELLED"
)

// Terminal reports whether no further transitions leave this status.
func (s ReservationStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Valid reports whether s is a known status.
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Reservation is a booked hourly slot at a station.
type Reservation struct {
	ID          int64             `db:"id" json:"id"`
	UserID      int64             `db:"user_id" json:"userId"`
	StationID   int64             `db:"station_id" json:"stationId"`
	Date        time.Time         `db:"date" json:"date"`
	Hour        string            `db:"hour" json:"hour"`
	IsGreen     bool              `db:"is_green" json:"isGreen"`
	EarnedCoins int64             `db:"earned_coins" json:"earnedCoins"`
	Status      ReservationStatus `db:"status" json:"status"`
	CreatedAt   time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updatedAt"`
}
