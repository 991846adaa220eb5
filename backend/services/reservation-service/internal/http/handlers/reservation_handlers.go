package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"smartcharge/backend/services/reservation-service/internal/models"
	"smartcharge/backend/services/reservation-service/internal/service"
)

// ReservationHandlers serves the reservation lifecycle.
type ReservationHandlers struct {
	svc    *service.ReservationService
	logger *zap.Logger
}

// NewReservationHandlers builds handlers.
func NewReservationHandlers(svc *service.ReservationService, logger *zap.Logger) *ReservationHandlers {
	return &ReservationHandlers{svc: svc, logger: logger}
}

type createReservationRequest struct {
	UserID    int64  `json:"userId"`
	StationID int64  `json:"stationId"`
	Date      string `json:"date"`
	Hour      string `json:"hour"`
	IsGreen   *bool  `json:"isGreen"`
}

type createReservationResponse struct {
	Success     bool                   `json:"success"`
	Reservation *models.Reservation    `json:"reservation"`
	User        *models.LedgerSnapshot `json:"user"`
}

// Create handles POST /reservations.
func (h *ReservationHandlers) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req createReservationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID != 0 && req.UserID != actor.UserID {
		writeError(w, http.StatusForbidden, "userId does not match the authenticated user")
		return
	}

	result, err := h.svc.Create(r.Context(), service.CreateReservationInput{
		UserID:    req.UserID,
		StationID: req.StationID,
		Date:      req.Date,
		Hour:      req.Hour,
		IsGreen:   req.IsGreen,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, createReservationResponse{
		Success:     true,
		Reservation: result.Reservation,
		User:        result.Ledger,
	})
}

type transitionRequest struct {
	Status string `json:"status"`
}

type transitionResponse struct {
	Success     bool                   `json:"success"`
	Applied     bool                   `json:"applied"`
	Reservation *models.Reservation    `json:"reservation"`
	User        *models.LedgerSnapshot `json:"user,omitempty"`
}

// Transition handles PATCH /reservations/{id}.
func (h *ReservationHandlers) Transition(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req transitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.Transition(r.Context(), actor, id, req.Status)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, transitionResponse{
		Success:     true,
		Applied:     result.Applied,
		Reservation: result.Reservation,
		User:        result.Ledger,
	})
}

// Get handles GET /reservations/{id}.
func (h *ReservationHandlers) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	res, err := h.svc.Get(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListForUser handles GET /users/{id}/reservations.
func (h *ReservationHandlers) ListForUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	list, err := h.svc.ListForUser(r.Context(), actor, userID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
