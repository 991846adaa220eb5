package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"smartcharge/backend/services/reservation-service/internal/events"
	"smartcharge/backend/services/reservation-service/internal/models"
	"smartcharge/backend/services/reservation-service/internal/repository/memory"
)

var fixedNow = time.Date(2026, 3, 14, 21, 30, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store     *memory.Store
	driver    models.User
	operator  models.User
	station   models.Station
	publisher *recordingPublisher
	svc       *ReservationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	store.SetClock(func() time.Time { return fixedNow })
	f := &fixture{store: store, publisher: &recordingPublisher{}}
	f.driver = store.AddUser(models.User{Name: "Driver", Email: "driver@example.com", Role: models.RoleDriver})
	f.operator = store.AddUser(models.User{Name: "Operator", Email: "operator@example.com", Role: models.RoleOperator})
	f.station = store.AddStation(models.Station{Name: "Harbor", Price: 5.0, OwnerID: f.operator.ID})
	f.svc = NewReservationService(store.Reservations(), store.Campaigns(), f.publisher, zap.NewNop()).
		WithClock(func() time.Time { return fixedNow })
	return f
}

func (f *fixture) self() Actor {
	return Actor{UserID: f.driver.ID, Role: models.RoleDriver}
}

func (f *fixture) ledger(t *testing.T) models.User {
	t.Helper()
	u, err := f.store.Users().GetByID(context.Background(), f.driver.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	return *u
}

func (f *fixture) book(t *testing.T, green bool) *CreateResult {
	t.Helper()
	result, err := f.svc.Create(context.Background(), CreateReservationInput{
		UserID:    f.driver.ID,
		StationID: f.station.ID,
		Date:      "2026-03-15",
		Hour:      "23:00 - 00:00",
		IsGreen:   &green,
	})
	if err != nil {
		t.Fatalf("create reservation: %v", err)
	}
	return result
}

func ptr[T any](v T) *T { return &v }

func assertLedger(t *testing.T, u models.User, coins, xp int64, co2 float64) {
	t.Helper()
	if u.Coins != coins || u.XP != xp || !approx(u.CO2Saved, co2) {
		t.Fatalf("expected ledger coins=%d xp=%d co2=%.2f, got coins=%d xp=%d co2=%.2f", coins, xp, co2, u.Coins, u.XP, u.CO2Saved)
	}
}

func approx(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
