package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"smartcharge/backend/services/reservation-service/internal/events"
	"smartcharge/backend/services/reservation-service/internal/models"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(body)
}

func TestMiddlewareLabelsByRouteTemplate(t *testing.T) {
	m := New()
	router := mux.NewRouter()
	router.Use(m.Middleware)
	router.HandleFunc("/stations/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	for _, path := range []string{"/stations/1", "/stations/2"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	body := scrape(t, m)
	want := `smartcharge_http_requests_total{method="GET",route="/stations/{id}",status="404"} 2`
	if !strings.Contains(body, want) {
		t.Fatalf("expected %q in exposition", want)
	}
}

func TestPublishCountsEvents(t *testing.T) {
	m := New()
	res := &models.Reservation{UserID: 1, EarnedCoins: 30}
	_ = m.Publish(context.Background(), events.New(events.TypeReservationCreated, res.CreatedAt, res, nil))
	_ = m.Publish(context.Background(), events.New(events.TypeReservationCompleted, res.CreatedAt, res, nil))

	body := scrape(t, m)
	for _, want := range []string{
		`smartcharge_reservation_events_total{type="reservation.created"} 1`,
		`smartcharge_reservation_events_total{type="reservation.completed"} 1`,
		`smartcharge_reservation_earned_coins_total 30`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in exposition", want)
		}
	}
}
