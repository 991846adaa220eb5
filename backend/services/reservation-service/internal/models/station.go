package models

import "time"

// Station is a charging location owned by an operator.
type Station struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   string    `db:"address" json:"address"`
	Latitude  float64   `db:"latitude" json:"latitude"`
	Longitude float64   `db:"longitude" json:"longitude"`
	Price     float64   `db:"price" json:"price"`
	OwnerID   int64     `db:"owner_id" json:"ownerId"`
	Density   int       `db:"density" json:"density"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
