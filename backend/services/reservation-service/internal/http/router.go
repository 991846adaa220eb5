package httpserver

import (
	"net/http"

	"github.com/gorilla/mux"

	"smartcharge/backend/services/reservation-service/internal/http/handlers"
)

// RouterDeps collects handler dependencies. Nil Metrics or WebSocket leave those routes out.
type RouterDeps struct {
	Reservations *handlers.ReservationHandlers
	Stations     *handlers.StationHandlers
	Campaigns    *handlers.CampaignHandlers
	Users        *handlers.UserHandlers
	Health       http.HandlerFunc
	WebSocket    http.HandlerFunc
	Metrics      http.Handler
}

// NewRouter wires public reads, authenticated writes and the event stream.
func NewRouter(deps RouterDeps, authMiddleware, metricsMiddleware mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()
	if metricsMiddleware != nil {
		r.Use(metricsMiddleware)
	}

	r.HandleFunc("/health", deps.Health).Methods(http.MethodGet)
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics).Methods(http.MethodGet)
	}

	r.HandleFunc("/stations", deps.Stations.List).Methods(http.MethodGet)
	r.HandleFunc("/stations/{id:[0-9]+}", deps.Stations.Get).Methods(http.MethodGet)
	r.HandleFunc("/stations/{id:[0-9]+}/forecast", deps.Stations.Forecast).Methods(http.MethodGet)
	r.HandleFunc("/users/{id:[0-9]+}", deps.Users.Profile).Methods(http.MethodGet)
	r.HandleFunc("/leaderboard", deps.Users.Leaderboard).Methods(http.MethodGet)
	r.HandleFunc("/badges", deps.Users.Badges).Methods(http.MethodGet)

	authed := r.NewRoute().Subrouter()
	authed.Use(authMiddleware)

	authed.HandleFunc("/reservations", deps.Reservations.Create).Methods(http.MethodPost)
	authed.HandleFunc("/reservations/{id:[0-9]+}", deps.Reservations.Get).Methods(http.MethodGet)
	authed.HandleFunc("/reservations/{id:[0-9]+}", deps.Reservations.Transition).Methods(http.MethodPatch)
	authed.HandleFunc("/users/{id:[0-9]+}/reservations", deps.Reservations.ListForUser).Methods(http.MethodGet)

	authed.HandleFunc("/stations", deps.Stations.Create).Methods(http.MethodPost)
	authed.HandleFunc("/stations/{id:[0-9]+}", deps.Stations.Update).Methods(http.MethodPut)
	authed.HandleFunc("/stations/{id:[0-9]+}", deps.Stations.Delete).Methods(http.MethodDelete)

	authed.HandleFunc("/campaigns", deps.Campaigns.List).Methods(http.MethodGet)
	authed.HandleFunc("/campaigns", deps.Campaigns.Create).Methods(http.MethodPost)
	authed.HandleFunc("/campaigns/{id:[0-9]+}", deps.Campaigns.Update).Methods(http.MethodPut)
	authed.HandleFunc("/campaigns/{id:[0-9]+}", deps.Campaigns.Delete).Methods(http.MethodDelete)

	authed.HandleFunc("/users/{id:[0-9]+}", deps.Users.UpdateProfile).Methods(http.MethodPatch)
	authed.HandleFunc("/users/{id:[0-9]+}/recommendations", deps.Campaigns.Recommendations).Methods(http.MethodGet)

	if deps.WebSocket != nil {
		authed.HandleFunc("/ws", deps.WebSocket).Methods(http.MethodGet)
	}
	return r
}
