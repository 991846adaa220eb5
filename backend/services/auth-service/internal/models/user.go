package models

import "time"

// Role values shared with reservation-service.
const (
	RoleDriver   = "DRIVER"
	RoleOperator = "OPERATOR"
)

// User is the identity view of a SmartCharge account.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Role      string    `db:"role" json:"role"`
	Coins     int64     `db:"coins" json:"coins"`
	XP        int64     `db:"xp" json:"xp"`
	CO2Saved  float64   `db:"co2_saved" json:"co2Saved"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
