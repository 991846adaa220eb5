package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"smartcharge/backend/services/reservation-service/internal/models"
	"smartcharge/backend/services/reservation-service/internal/pricing"
)

// StationInput is the editable part of a station.
type StationInput struct {
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
	Price     float64
	Density   int
}

// StationService serves station CRUD and slot views.
type StationService struct {
	stations  StationStore
	campaigns CampaignStore
	generator *pricing.Generator
	fixed     pricing.GreenPolicy
	rolling   pricing.GreenPolicy
	logger    *zap.Logger
	now       func() time.Time
}

// NewStationService builds StationService.
func NewStationService(stations StationStore, campaigns CampaignStore, generator *pricing.Generator, logger *zap.Logger) *StationService {
	return &StationService{
		stations:  stations,
		campaigns: campaigns,
		generator: generator,
		fixed:     pricing.NewFixedBandGreenPolicy(),
		rolling:   pricing.NewRollingLoadGreenPolicy(),
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source.
func (s *StationService) WithClock(now func() time.Time) *StationService {
	s.now = now
	return s
}

// List returns every station.
func (s *StationService) List(ctx context.Context) ([]models.Station, error) {
	stations, err := s.stations.List(ctx)
	if err != nil {
		return nil, translate("station: list", err)
	}
	return stations, nil
}

// Details returns the station with its fixed-band slots for the next 24 hours.
func (s *StationService) Details(ctx context.Context, id int64) (*models.StationSlots, error) {
	return s.slots(ctx, id, s.fixed, "station: details")
}

// Forecast returns the station with its load-driven rolling slots for the next 24 hours.
func (s *StationService) Forecast(ctx context.Context, id int64) (*models.StationSlots, error) {
	return s.slots(ctx, id, s.rolling, "station: forecast")
}

func (s *StationService) slots(ctx context.Context, id int64, policy pricing.GreenPolicy, op string) (*models.StationSlots, error) {
	station, err := s.stations.GetByID(ctx, id)
	if err != nil {
		return nil, translate(op, err)
	}
	active, err := s.campaigns.ListActive(ctx)
	if err != nil {
		return nil, translate(op, err)
	}
	now := s.now()
	campaign := SelectCampaign(active, &station.ID, now)
	return &models.StationSlots{
		Station: *station,
		Slots:   s.generator.Generate(now, station, policy, campaign),
	}, nil
}

// Create adds a station owned by the operator.
func (s *StationService) Create(ctx context.Context, actor Actor, in StationInput) (*models.Station, error) {
	if err := requireOperator(actor); err != nil {
		return nil, err
	}
	station, err := buildStation(in)
	if err != nil {
		return nil, err
	}
	station.OwnerID = actor.UserID
	if err := s.stations.Create(ctx, station); err != nil {
		return nil, translate("station: create", err)
	}
	s.logger.Info("station created", zap.Int64("station_id", station.ID), zap.Int64("owner_id", station.OwnerID))
	return station, nil
}

// Update replaces a station the operator owns.
func (s *StationService) Update(ctx context.Context, actor Actor, id int64, in StationInput) (*models.Station, error) {
	if err := requireOperator(actor); err != nil {
		return nil, err
	}
	station, err := buildStation(in)
	if err != nil {
		return nil, err
	}
	station.ID = id
	station.OwnerID = actor.UserID
	if err := s.stations.Update(ctx, station); err != nil {
		return nil, translate("station: update", err)
	}
	s.logger.Info("station updated", zap.Int64("station_id", station.ID))
	return station, nil
}

// Delete removes a station the operator owns. Stations with reservations are kept.
func (s *StationService) Delete(ctx context.Context, actor Actor, id int64) error {
	if err := requireOperator(actor); err != nil {
		return err
	}
	if err := s.stations.Delete(ctx, id, actor.UserID); err != nil {
		return translate("station: delete", err)
	}
	s.logger.Info("station deleted", zap.Int64("station_id", id))
	return nil
}

func buildStation(in StationInput) (*models.Station, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	if in.Latitude < -90 || in.Latitude > 90 {
		return nil, invalid("latitude", "must be between -90 and 90")
	}
	if in.Longitude < -180 || in.Longitude > 180 {
		return nil, invalid("longitude", "must be between -180 and 180")
	}
	if in.Price <= 0 {
		return nil, invalid("price", "must be positive")
	}
	if in.Density < 0 || in.Density > 100 {
		return nil, invalid("density", "must be between 0 and 100")
	}
	return &models.Station{
		Name:      name,
		Address:   strings.TrimSpace(in.Address),
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Price:     in.Price,
		Density:   in.Density,
	}, nil
}
