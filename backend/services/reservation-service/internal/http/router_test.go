package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"smartcharge/backend/services/reservation-service/internal/http/handlers"
	"smartcharge/backend/services/reservation-service/internal/http/middleware"
	"smartcharge/backend/services/reservation-service/internal/metrics"
	"smartcharge/backend/services/reservation-service/internal/models"
	"smartcharge/backend/services/reservation-service/internal/pricing"
	"smartcharge/backend/services/reservation-service/internal/repository/memory"
	"smartcharge/backend/services/reservation-service/internal/service"
)

const (
	secret = "router-secret"
	issuer = "smartcharge-auth"
)

var now = time.Date(2026, 5, 2, 22, 15, 0, 0, time.UTC)

type testEnv struct {
	handler  http.Handler
	store    *memory.Store
	driver   models.User
	operator models.User
	station  models.Station
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	clock := func() time.Time { return now }
	store := memory.New()
	store.SetClock(clock)

	env := &testEnv{store: store}
	env.driver = store.AddUser(models.User{Name: "Driver", Email: "driver@example.com", Role: models.RoleDriver})
	env.operator = store.AddUser(models.User{Name: "Operator", Email: "op@example.com", Role: models.RoleOperator})
	env.station = store.AddStation(models.Station{Name: "Harbor", Price: 5.0, OwnerID: env.operator.ID})

	gen := pricing.NewGenerator(pricing.NewRandomLoadEstimator(1, 2), pricing.DefaultBasePrice, time.UTC)
	m := metrics.New()
	reservations := service.NewReservationService(store.Reservations(), store.Campaigns(), m, logger).WithClock(clock)
	stations := service.NewStationService(store.Stations(), store.Campaigns(), gen, logger).WithClock(clock)
	campaigns := service.NewCampaignService(store.Campaigns(), store.Users(), logger).WithClock(clock)
	users := service.NewUserService(store.Users(), store.Badges(), logger)

	router := NewRouter(RouterDeps{
		Reservations: handlers.NewReservationHandlers(reservations, logger),
		Stations:     handlers.NewStationHandlers(stations, logger),
		Campaigns:    handlers.NewCampaignHandlers(campaigns, logger),
		Users:        handlers.NewUserHandlers(users, logger),
		Health:       handlers.NewHealthHandler(),
		Metrics:      m.Handler(),
	}, middleware.NewAuthenticator(secret, issuer).Middleware, m.Middleware)
	env.handler = middleware.Chain(router, middleware.RequestID, middleware.Recovery(logger))
	return env
}

func token(t *testing.T, u models.User) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID,
		"role":    u.Role,
		"iss":     issuer,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func (e *testEnv) do(t *testing.T, method, path string, as *models.User, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+token(t, *as))
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestReservationFlowOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/reservations", &env.driver, map[string]interface{}{
		"userId": env.driver.ID, "stationId": env.station.ID, "date": "2026-05-03", "hour": "23:00 - 00:00", "isGreen": true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Success     bool                  `json:"success"`
		Reservation models.Reservation    `json:"reservation"`
		User        models.LedgerSnapshot `json:"user"`
	}
	decode(t, rec, &created)
	if !created.Success || created.Reservation.EarnedCoins != 50 || created.User.Coins != 50 || created.User.XP != 150 || created.User.CO2Saved != 2.5 {
		t.Fatalf("unexpected create response: %+v", created)
	}

	path := "/reservations/" + strconv.FormatInt(created.Reservation.ID, 10)
	rec = env.do(t, http.MethodPatch, path, &env.driver, map[string]string{"status": "COMPLETED"})
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var done map[string]interface{}
	decode(t, rec, &done)
	if done["success"] != true || done["applied"] != true {
		t.Fatalf("unexpected transition response: %v", done)
	}

	rec = env.do(t, http.MethodPatch, path, &env.driver, map[string]string{"status": "COMPLETED"})
	decode(t, rec, &done)
	if rec.Code != http.StatusOK || done["applied"] != false {
		t.Fatalf("repeat completion must be a 200 no-op, got %d %v", rec.Code, done)
	}

	rec = env.do(t, http.MethodPatch, path, &env.driver, map[string]string{"status": "CANCELLED"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("cancel after completion: expected 409, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/users/"+strconv.FormatInt(env.driver.ID, 10), nil, nil)
	var profile models.User
	decode(t, rec, &profile)
	if profile.Coins != 100 || profile.XP != 250 || profile.CO2Saved != 5.0 {
		t.Fatalf("unexpected ledger after completion: %+v", profile)
	}

	rec = env.do(t, http.MethodGet, "/users/"+strconv.FormatInt(env.driver.ID, 10)+"/reservations", &env.driver, nil)
	var list []models.Reservation
	decode(t, rec, &list)
	if len(list) != 1 || list[0].Status != models.StatusCompleted {
		t.Fatalf("unexpected reservation list: %+v", list)
	}
}

func TestReservationErrorsOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name   string
		method string
		path   string
		as     *models.User
		body   interface{}
		status int
	}{
		{"no token", http.MethodPost, "/reservations", nil, map[string]interface{}{}, http.StatusUnauthorized},
		{"bad json", http.MethodPost, "/reservations", &env.driver, "not-an-object", http.StatusBadRequest},
		{"missing fields", http.MethodPost, "/reservations", &env.driver, map[string]interface{}{"userId": env.driver.ID}, http.StatusBadRequest},
		{"other user", http.MethodPost, "/reservations", &env.driver, map[string]interface{}{"userId": env.operator.ID, "stationId": env.station.ID, "date": "2026-05-03", "hour": "01:00 - 02:00", "isGreen": true}, http.StatusForbidden},
		{"unknown station", http.MethodPost, "/reservations", &env.driver, map[string]interface{}{"userId": env.driver.ID, "stationId": 999, "date": "2026-05-03", "hour": "01:00 - 02:00", "isGreen": true}, http.StatusNotFound},
		{"unknown reservation", http.MethodPatch, "/reservations/999", &env.driver, map[string]string{"status": "COMPLETED"}, http.StatusNotFound},
		{"bad status", http.MethodPatch, "/reservations/999", &env.driver, map[string]string{"status": "PENDING"}, http.StatusBadRequest},
		{"unknown station details", http.MethodGet, "/stations/999", nil, nil, http.StatusNotFound},
		{"bad leaderboard limit", http.MethodGet, "/leaderboard?limit=abc", nil, nil, http.StatusBadRequest},
		{"driver creates station", http.MethodPost, "/stations", &env.driver, map[string]interface{}{"name": "Mine"}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, tc.method, tc.path, tc.as, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			var payload map[string]string
			decode(t, rec, &payload)
			if payload["error"] == "" {
				t.Fatalf("expected error message, got %v", payload)
			}
		})
	}
}

func TestStationEndpoints(t *testing.T) {
	env := newTestEnv(t)
	id := strconv.FormatInt(env.station.ID, 10)

	rec := env.do(t, http.MethodGet, "/stations/"+id, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("details: %d %s", rec.Code, rec.Body.String())
	}
	var details struct {
		ID    int64             `json:"id"`
		Name  string            `json:"name"`
		Slots []models.TimeSlot `json:"slots"`
	}
	decode(t, rec, &details)
	if details.ID != env.station.ID || details.Name != "Harbor" || len(details.Slots) != 24 {
		t.Fatalf("unexpected details: id=%d slots=%d", details.ID, len(details.Slots))
	}
	if details.Slots[0].Hour != 22 || details.Slots[0].Status != "red" || details.Slots[1].Status != "green" {
		t.Fatalf("unexpected fixed band slots: %+v %+v", details.Slots[0], details.Slots[1])
	}

	rec = env.do(t, http.MethodGet, "/stations/"+id+"/forecast", nil, nil)
	decode(t, rec, &details)
	for _, slot := range details.Slots {
		lo, hi := pricing.LoadBand(slot.Hour)
		if slot.Load < lo || slot.Load > hi || slot.IsGreen != (slot.Load < 40) {
			t.Fatalf("forecast slot violates rolling policy: %+v", slot)
		}
	}

	rec = env.do(t, http.MethodPost, "/stations", &env.operator, map[string]interface{}{"name": "Pier", "latitude": 41.0, "longitude": 29.0, "price": 6.5})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create station: %d %s", rec.Code, rec.Body.String())
	}
	var station models.Station
	decode(t, rec, &station)

	rec = env.do(t, http.MethodPut, "/stations/"+strconv.FormatInt(station.ID, 10), &env.operator, map[string]interface{}{"name": "Pier 9", "price": 7.0})
	if rec.Code != http.StatusOK {
		t.Fatalf("update station: %d %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodPut, "/stations/"+strconv.FormatInt(station.ID, 10), &env.operator, map[string]interface{}{"name": "Pier 9", "price": 0})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("zero price update: expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodDelete, "/stations/"+strconv.FormatInt(station.ID, 10), &env.operator, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete station: %d %s", rec.Code, rec.Body.String())
	}
}

func TestCampaignEndpointsAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/campaigns", &env.operator, map[string]interface{}{
		"title": "Night bonus", "discount": "%15", "status": "ACTIVE", "coinReward": 20, "endDate": "2026-05-31",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create campaign: %d %s", rec.Code, rec.Body.String())
	}
	var campaign models.Campaign
	decode(t, rec, &campaign)
	if campaign.EndDate == nil || campaign.EndDate.Day() != 31 || campaign.EndDate.Hour() != 23 {
		t.Fatalf("expected end of day end date, got %v", campaign.EndDate)
	}

	rec = env.do(t, http.MethodPost, "/reservations", &env.driver, map[string]interface{}{
		"userId": env.driver.ID, "stationId": env.station.ID, "date": "2026-05-03", "hour": "14:00 - 15:00", "isGreen": false,
	})
	var created struct {
		Reservation models.Reservation `json:"reservation"`
	}
	decode(t, rec, &created)
	if created.Reservation.EarnedCoins != 30 {
		t.Fatalf("expected 10+20 coins, got %d", created.Reservation.EarnedCoins)
	}

	rec = env.do(t, http.MethodGet, "/users/"+strconv.FormatInt(env.driver.ID, 10)+"/recommendations", &env.driver, nil)
	var recs []models.Campaign
	decode(t, rec, &recs)
	if len(recs) != 1 || recs[0].Title != "Night bonus" {
		t.Fatalf("unexpected recommendations: %+v", recs)
	}
	rec = env.do(t, http.MethodGet, "/users/"+strconv.FormatInt(env.operator.ID, 10)+"/recommendations", &env.driver, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for someone else's recommendations, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/campaigns", &env.driver, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("drivers cannot list campaigns, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/metrics", nil, nil)
	if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte(`smartcharge_reservation_events_total{type="reservation.created"} 1`)) {
		t.Fatalf("expected created event in metrics, got %d", rec.Code)
	}
}
