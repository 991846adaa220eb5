package memory

import (
	"context"
	"errors"
	"testing"

	"smartcharge/backend/services/reservation-service/internal/models"
	"smartcharge/backend/services/reservation-service/internal/repository"
)

func TestSeedDemo(t *testing.T) {
	s := New()
	SeedDemo(s)
	ctx := context.Background()

	driver, err := s.Users().GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("demo driver: %v", err)
	}
	if driver.Email != DemoEmail || driver.Role != models.RoleDriver || len(driver.Badges) != 1 {
		t.Fatalf("unexpected demo driver: %+v", driver)
	}

	board, err := s.Users().Leaderboard(ctx, 2)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 2 || board[0].Name != "Ayla Green" || board[1].Rank != 2 {
		t.Fatalf("unexpected leaderboard: %+v", board)
	}

	active, err := s.Campaigns().ListActive(ctx)
	if err != nil || len(active) != 1 || active[0].StationID != nil {
		t.Fatalf("expected one global campaign, got %+v (%v)", active, err)
	}
}

func TestStationDeleteRules(t *testing.T) {
	s := New()
	ctx := context.Background()
	driver := s.AddUser(models.User{Name: "D", Email: "d@example.com", Role: models.RoleDriver})
	operator := s.AddUser(models.User{Name: "O", Email: "o@example.com", Role: models.RoleOperator})
	booked := s.AddStation(models.Station{Name: "Booked", Price: 5, OwnerID: operator.ID})
	free := s.AddStation(models.Station{Name: "Free", Price: 5, OwnerID: operator.ID})
	s.AddCampaign(models.Campaign{OwnerID: operator.ID, Title: "Local", Status: models.CampaignActive, StationID: &free.ID})

	res := &models.Reservation{UserID: driver.ID, StationID: booked.ID, Hour: "01:00 - 02:00", Status: models.StatusConfirmed}
	if _, err := s.Reservations().CreateWithCredit(ctx, res, models.LedgerCredit{Coins: 10}); err != nil {
		t.Fatalf("book: %v", err)
	}

	if err := s.Stations().Delete(ctx, booked.ID, operator.ID); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict for booked station, got %v", err)
	}
	if err := s.Stations().Delete(ctx, free.ID, driver.ID); !errors.Is(err, repository.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for foreign station, got %v", err)
	}
	if err := s.Stations().Delete(ctx, free.ID, operator.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if active, _ := s.Campaigns().ListActive(ctx); len(active) != 0 {
		t.Fatalf("station campaigns must be removed with the station, got %+v", active)
	}
}
