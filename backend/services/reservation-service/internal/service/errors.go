package service

import (
	"errors"
	"fmt"

	"smartcharge/backend/services/reservation-service/internal/repository"
)

var (
	// ErrNotFound matches every NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller may not act on the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidTransition is returned for status changes out of a terminal state.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrConflict is returned when the write collides with existing data.
	ErrConflict = errors.New("conflict")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError names the missing resource.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StoreError wraps a persistence failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: store: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// translate maps repository errors onto service errors. Errors that already belong to this
// package pass through unchanged.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	var validation *ValidationError
	switch {
	case errors.As(err, &validation),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrNotFound):
		return err
	case errors.Is(err, repository.ErrUserNotFound):
		return &NotFoundError{Resource: "user"}
	case errors.Is(err, repository.ErrStationNotFound):
		return &NotFoundError{Resource: "station"}
	case errors.Is(err, repository.ErrReservationNotFound):
		return &NotFoundError{Resource: "reservation"}
	case errors.Is(err, repository.ErrCampaignNotFound):
		return &NotFoundError{Resource: "campaign"}
	case errors.Is(err, repository.ErrBadgeNotFound):
		return &NotFoundError{Resource: "badge"}
	case errors.Is(err, repository.ErrForbidden), errors.Is(err, ErrForbidden):
		return ErrForbidden
	case errors.Is(err, repository.ErrEmailTaken):
		return fmt.Errorf("%w: email already in use", ErrConflict)
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%w: %s", ErrConflict, op)
	default:
		return &StoreError{Op: op, Err: err}
	}
}
