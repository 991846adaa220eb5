// Package events carries reservation lifecycle notifications to brokers and live clients.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"smartcharge/backend/services/reservation-service/internal/models"
)

// Event types.
const (
	TypeReservationCreated   = "reservation.created"
	TypeReservationCompleted = "reservation.completed"
	TypeReservationCancelled = "reservation.cancelled"
)

// Event is published after a reservation write commits.
type Event struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	OccurredAt  time.Time              `json:"occurredAt"`
	UserID      int64                  `json:"userId"`
	Reservation *models.Reservation    `json:"reservation"`
	Ledger      *models.LedgerSnapshot `json:"ledger,omitempty"`
}

// New stamps an event with a fresh id.
func New(eventType string, occurredAt time.Time, res *models.Reservation, ledger *models.LedgerSnapshot) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		OccurredAt:  occurredAt.UTC(),
		UserID:      res.UserID,
		Reservation: res,
		Ledger:      ledger,
	}
}

// Publisher delivers events somewhere.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, event Event) error

// Publish implements Publisher.
func (f PublisherFunc) Publish(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Nop drops every event.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Event) error { return nil }

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
