package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"smartcharge/backend/services/reservation-service/internal/events"
	"smartcharge/backend/services/reservation-service/internal/models"
	"smartcharge/backend/services/reservation-service/internal/pricing"
	"smartcharge/backend/services/reservation-service/internal/repository"
)

// Ledger amounts for booking and completing a reservation.
const (
	CreateXPGreen    = 150
	CreateXPStandard = 60
	CompleteXP       = 100
	CO2Green         = 2.5
	CO2Standard      = 0.5
)

// CreateReservationInput is a booking request. IsGreen is a pointer so that a missing flag
// can be told apart from false.
type CreateReservationInput struct {
	UserID    int64
	StationID int64
	Date      string
	Hour      string
	IsGreen   *bool
}

// CreateResult is a stored reservation and the owner's balance after the booking credit.
type CreateResult struct {
	Reservation *models.Reservation
	Ledger      *models.LedgerSnapshot
}

// TransitionResult is the outcome of a status change. Applied is false for a repeated
// terminal status, which changes nothing.
type TransitionResult struct {
	Reservation *models.Reservation
	Ledger      *models.LedgerSnapshot
	Applied     bool
}

// ReservationService runs the reservation lifecycle and the ledger credits tied to it.
type ReservationService struct {
	reservations ReservationStore
	campaigns    CampaignStore
	publisher    events.Publisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewReservationService builds ReservationService. A nil publisher drops events.
func NewReservationService(reservations ReservationStore, campaigns CampaignStore, publisher events.Publisher, logger *zap.Logger) *ReservationService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &ReservationService{
		reservations: reservations,
		campaigns:    campaigns,
		publisher:    publisher,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source.
func (s *ReservationService) WithClock(now func() time.Time) *ReservationService {
	s.now = now
	return s
}

// Create books a slot and credits the user in one store transaction. earnedCoins is fixed
// here, including the bonus of the campaign that applies at this moment.
func (s *ReservationService) Create(ctx context.Context, in CreateReservationInput) (*CreateResult, error) {
	date, err := validateCreate(in)
	if err != nil {
		return nil, err
	}
	isGreen := *in.IsGreen

	active, err := s.campaigns.ListActive(ctx)
	if err != nil {
		return nil, translate("reservation: create", err)
	}
	stationID := in.StationID
	campaign := SelectCampaign(active, &stationID, s.now())

	earned := pricing.RewardFor(isGreen, 0).Coins
	if campaign != nil {
		earned += campaign.CoinReward
	}

	res := &models.Reservation{
		UserID:      in.UserID,
		StationID:   in.StationID,
		Date:        date,
		Hour:        strings.TrimSpace(in.Hour),
		IsGreen:     isGreen,
		EarnedCoins: earned,
		Status:      models.StatusConfirmed,
	}
	credit := models.LedgerCredit{Coins: earned, XP: CreateXPStandard, CO2Saved: CO2Standard}
	if isGreen {
		credit.XP = CreateXPGreen
		credit.CO2Saved = CO2Green
	}

	ledger, err := s.reservations.CreateWithCredit(ctx, res, credit)
	if err != nil {
		return nil, translate("reservation: create", err)
	}

	fields := []zap.Field{
		zap.Int64("reservation_id", res.ID),
		zap.Int64("user_id", res.UserID),
		zap.Int64("station_id", res.StationID),
		zap.Bool("green", res.IsGreen),
		zap.Int64("earned_coins", res.EarnedCoins),
	}
	if campaign != nil {
		fields = append(fields, zap.Int64("campaign_id", campaign.ID))
	}
	s.logger.Info("reservation created", fields...)
	s.publish(ctx, events.TypeReservationCreated, res, ledger)

	return &CreateResult{Reservation: res, Ledger: ledger}, nil
}

// Transition moves the caller's reservation to COMPLETED or CANCELLED. Completion credits the
// stored earnedCoins once; cancellation never takes anything back.
func (s *ReservationService) Transition(ctx context.Context, actor Actor, id int64, status string) (*TransitionResult, error) {
	target, err := parseTargetStatus(status)
	if err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, invalid("id", "must be positive")
	}

	result, err := s.reservations.Transition(ctx, id, func(current models.Reservation) (repository.TransitionDecision, error) {
		if current.UserID != actor.UserID {
			return repository.TransitionDecision{}, ErrForbidden
		}
		return Plan(current, target)
	})
	if err != nil {
		return nil, translate("reservation: transition", err)
	}
	if !result.Applied {
		s.logger.Info("reservation transition skipped",
			zap.Int64("reservation_id", id),
			zap.String("status", string(result.Reservation.Status)),
		)
		return &TransitionResult{Reservation: result.Reservation}, nil
	}

	s.logger.Info("reservation transitioned",
		zap.Int64("reservation_id", id),
		zap.Int64("user_id", result.Reservation.UserID),
		zap.String("status", string(target)),
	)
	eventType := events.TypeReservationCancelled
	if target == models.StatusCompleted {
		eventType = events.TypeReservationCompleted
	}
	s.publish(ctx, eventType, result.Reservation, result.Ledger)

	return &TransitionResult{Reservation: result.Reservation, Ledger: result.Ledger, Applied: true}, nil
}

// Get returns one of the caller's reservations.
func (s *ReservationService) Get(ctx context.Context, actor Actor, id int64) (*models.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, translate("reservation: get", err)
	}
	if res.UserID != actor.UserID {
		return nil, ErrForbidden
	}
	return res, nil
}

// ListForUser returns the caller's reservations, newest first.
func (s *ReservationService) ListForUser(ctx context.Context, actor Actor, userID int64) ([]models.Reservation, error) {
	if actor.UserID != userID {
		return nil, ErrForbidden
	}
	list, err := s.reservations.ListByUser(ctx, userID)
	if err != nil {
		return nil, translate("reservation: list", err)
	}
	return list, nil
}

// Plan decides what a transition from current to target does.
func Plan(current models.Reservation, target models.ReservationStatus) (repository.TransitionDecision, error) {
	if current.Status == target {
		return repository.TransitionDecision{}, nil
	}
	if current.Status.Terminal() {
		return repository.TransitionDecision{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, target)
	}
	switch target {
	case models.StatusCompleted:
		credit := models.LedgerCredit{Coins: current.EarnedCoins, XP: CompleteXP, CO2Saved: CO2Standard}
		if current.IsGreen {
			credit.CO2Saved = CO2Green
		}
		return repository.TransitionDecision{Apply: true, To: target, Credit: credit}, nil
	case models.StatusCancelled:
		return repository.TransitionDecision{Apply: true, To: target}, nil
	default:
		return repository.TransitionDecision{}, invalid("status", "must be COMPLETED or CANCELLED")
	}
}

func (s *ReservationService) publish(ctx context.Context, eventType string, res *models.Reservation, ledger *models.LedgerSnapshot) {
	event := events.New(eventType, s.now(), res, ledger)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("type", eventType),
			zap.String("event_id", event.ID),
			zap.Int64("reservation_id", res.ID),
			zap.Error(err),
		)
	}
}

func validateCreate(in CreateReservationInput) (time.Time, error) {
	if in.UserID <= 0 {
		return time.Time{}, invalid("userId", "is required")
	}
	if in.StationID <= 0 {
		return time.Time{}, invalid("stationId", "is required")
	}
	if strings.TrimSpace(in.Date) == "" {
		return time.Time{}, invalid("date", "is required")
	}
	if strings.TrimSpace(in.Hour) == "" {
		return time.Time{}, invalid("hour", "is required")
	}
	if in.IsGreen == nil {
		return time.Time{}, invalid("isGreen", "is required")
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		return time.Time{}, invalid("date", "must be YYYY-MM-DD or RFC 3339")
	}
	return date, nil
}

// ParseDate accepts an RFC 3339 timestamp or a plain calendar date.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, errors.New("unparsable date")
	}
	return t, nil
}

func parseTargetStatus(status string) (models.ReservationStatus, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status == "" {
		return "", invalid("status", "is required")
	}
	target := models.ReservationStatus(status)
	if target != models.StatusCompleted && target != models.StatusCancelled {
		return "", invalid("status", "must be COMPLETED or CANCELLED")
	}
	return target, nil
}
