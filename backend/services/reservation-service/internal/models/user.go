package models

import "time"

// Role values.
const (
	RoleDriver   = "DRIVER"
	RoleOperator = "OPERATOR"
)

// User is a driver or operator together with the reward ledger.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Role      string    `db:"role" json:"role"`
	Coins     int64     `db:"coins" json:"coins"`
	XP        int64     `db:"xp" json:"xp"`
	CO2Saved  float64   `db:"co2_saved" json:"co2Saved"`
	Badges    []Badge   `json:"badges"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// LedgerSnapshot is the balance part of a user returned after a ledger write.
type LedgerSnapshot struct {
	ID       int64   `json:"id"`
	Coins    int64   `json:"coins"`
	CO2Saved float64 `json:"co2Saved"`
	XP       int64   `json:"xp"`
}

// LedgerCredit is an increment applied to a user's ledger. Values are never negative.
type LedgerCredit struct {
	Coins    int64
	XP       int64
	CO2Saved float64
}

// IsZero reports whether applying the credit would change nothing.
func (c LedgerCredit) IsZero() bool {
	return c.Coins == 0 && c.XP == 0 && c.CO2Saved == 0
}

// Badge is an achievement a user may hold.
type Badge struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Icon        string `db:"icon" json:"icon"`
}

// LeaderboardEntry ranks a user by accumulated XP.
type LeaderboardEntry struct {
	Rank     int     `json:"rank"`
	UserID   int64   `json:"userId"`
	Name     string  `json:"name"`
	XP       int64   `json:"xp"`
	Coins    int64   `json:"coins"`
	CO2Saved float64 `json:"co2Saved"`
}
