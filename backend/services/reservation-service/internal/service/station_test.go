package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"smartcharge/backend/services/reservation-service/internal/models"
	"smartcharge/backend/services/reservation-service/internal/pricing"
)

type constantLoad int

func (c constantLoad) EstimateLoad(*models.Station, time.Time, time.Time) int { return int(c) }

func newStationService(f *fixture, load int) *StationService {
	gen := pricing.NewGenerator(constantLoad(load), pricing.DefaultBasePrice, time.UTC)
	return NewStationService(f.store.Stations(), f.store.Campaigns(), gen, zap.NewNop()).
		WithClock(func() time.Time { return fixedNow })
}

func TestStationDetailsUsesFixedBand(t *testing.T) {
	f := newFixture(t)
	f.store.AddCampaign(models.Campaign{OwnerID: f.operator.ID, Title: "Harbor nights", Discount: "%10", Status: models.CampaignActive, StationID: &f.station.ID, CoinReward: 5})
	svc := newStationService(f, 90)

	details, err := svc.Details(context.Background(), f.station.ID)
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if details.ID != f.station.ID || len(details.Slots) != pricing.SlotsPerWindow {
		t.Fatalf("unexpected details: id=%d slots=%d", details.ID, len(details.Slots))
	}
	first := details.Slots[0]
	if first.Hour != 21 || first.Status != pricing.SlotStatusRed || first.Price != 5.0 || first.Coins != 15 {
		t.Fatalf("unexpected first slot: %+v", first)
	}
	night := details.Slots[2] // 23:00
	if night.Hour != 23 || !night.IsGreen || night.Price != 4.0 || night.Coins != 55 || night.Load != 90 {
		t.Fatalf("unexpected night slot: %+v", night)
	}
	if night.CampaignApplied == nil || night.CampaignApplied.Title != "Harbor nights" {
		t.Fatalf("expected campaign on slot, got %+v", night.CampaignApplied)
	}
}

func TestStationForecastUsesRollingLoad(t *testing.T) {
	f := newFixture(t)
	svc := newStationService(f, 25)

	forecast, err := svc.Forecast(context.Background(), f.station.ID)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	for _, slot := range forecast.Slots {
		if !slot.IsGreen || slot.Price != 4.75 || slot.Status != "" || slot.CampaignApplied != nil {
			t.Fatalf("unexpected rolling slot: %+v", slot)
		}
	}

	if _, err := svc.Forecast(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStationOwnership(t *testing.T) {
	f := newFixture(t)
	svc := newStationService(f, 50)
	ctx := context.Background()
	op := Actor{UserID: f.operator.ID, Role: models.RoleOperator}

	if _, err := svc.Create(ctx, Actor{UserID: f.driver.ID, Role: models.RoleDriver}, StationInput{Name: "Nope"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("drivers cannot create stations, got %v", err)
	}
	if _, err := svc.Create(ctx, op, StationInput{Name: "Bad", Latitude: 91, Price: 5}); err == nil {
		t.Fatalf("expected latitude validation error")
	}
	if _, err := svc.Create(ctx, op, StationInput{Name: "Bad", Density: 101, Price: 5}); err == nil {
		t.Fatalf("expected density validation error")
	}
	for _, price := range []float64{0, -1.5} {
		var verr *ValidationError
		if _, err := svc.Create(ctx, op, StationInput{Name: "Free", Price: price}); !errors.As(err, &verr) || verr.Field != "price" {
			t.Fatalf("price %v: expected price validation error, got %v", price, err)
		}
	}

	created, err := svc.Create(ctx, op, StationInput{Name: " Pier ", Address: "Dock 1", Latitude: 41, Longitude: 29, Price: 6.5})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 || created.Name != "Pier" || created.OwnerID != f.operator.ID {
		t.Fatalf("unexpected station: %+v", created)
	}

	rival := Actor{UserID: 55, Role: models.RoleOperator}
	if _, err := svc.Update(ctx, rival, created.ID, StationInput{Name: "Mine", Price: 5}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden update, got %v", err)
	}
	updated, err := svc.Update(ctx, op, created.ID, StationInput{Name: "Pier 2", Price: 7, Density: 40})
	if err != nil || updated.Name != "Pier 2" || updated.Density != 40 {
		t.Fatalf("update: %+v, %v", updated, err)
	}
	if _, err := svc.Update(ctx, op, created.ID, StationInput{Name: "Pier 2", Price: 0}); err == nil {
		t.Fatalf("expected zero price to be rejected on update")
	}
	if got, _ := svc.Details(ctx, created.ID); got == nil || got.Slots[0].Price != 7 {
		t.Fatalf("rejected update must leave the price at 7, got %+v", got)
	}

	// The fixture station has no reservations yet; book one to block deletion.
	f.book(t, true)
	if err := svc.Delete(ctx, op, f.station.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict deleting a booked station, got %v", err)
	}
	if err := svc.Delete(ctx, rival, created.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden delete, got %v", err)
	}
	if err := svc.Delete(ctx, op, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, err := svc.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one station left, got %d, %v", len(list), err)
	}
}
