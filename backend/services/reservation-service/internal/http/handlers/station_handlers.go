package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"smartcharge/backend/services/reservation-service/internal/service"
)

// StationHandlers serves stations and their slot views.
type StationHandlers struct {
	svc    *service.StationService
	logger *zap.Logger
}

// NewStationHandlers builds handlers.
func NewStationHandlers(svc *service.StationService, logger *zap.Logger) *StationHandlers {
	return &StationHandlers{svc: svc, logger: logger}
}

type stationRequest struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Price     float64 `json:"price"`
	Density   int     `json:"density"`
}

func (req stationRequest) input() service.StationInput {
	return service.StationInput{
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Price:     req.Price,
		Density:   req.Density,
	}
}

// List handles GET /stations.
func (h *StationHandlers) List(w http.ResponseWriter, r *http.Request) {
	stations, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stations)
}

// Get handles GET /stations/{id}.
func (h *StationHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	details, err := h.svc.Details(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// Forecast handles GET /stations/{id}/forecast.
func (h *StationHandlers) Forecast(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	forecast, err := h.svc.Forecast(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, forecast)
}

// Create handles POST /stations.
func (h *StationHandlers) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req stationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	station, err := h.svc.Create(r.Context(), actor, req.input())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, station)
}

// Update handles PUT /stations/{id}.
func (h *StationHandlers) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req stationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	station, err := h.svc.Update(r.Context(), actor, id, req.input())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, station)
}

// Delete handles DELETE /stations/{id}.
func (h *StationHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), actor, id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
