package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"smartcharge/backend/services/reservation-service/internal/service"
)

// CampaignHandlers serves operator campaigns and user recommendations.
type CampaignHandlers struct {
	svc    *service.CampaignService
	logger *zap.Logger
}

// NewCampaignHandlers builds handlers.
func NewCampaignHandlers(svc *service.CampaignService, logger *zap.Logger) *CampaignHandlers {
	return &CampaignHandlers{svc: svc, logger: logger}
}

type campaignRequest struct {
	Title          string  `json:"title"`
	Discount       string  `json:"discount"`
	Status         string  `json:"status"`
	StationID      *int64  `json:"stationId"`
	EndDate        *string `json:"endDate"`
	CoinReward     int64   `json:"coinReward"`
	TargetBadgeIDs []int64 `json:"targetBadgeIds"`
}

func (req campaignRequest) input() (service.CampaignInput, error) {
	in := service.CampaignInput{
		Title:          req.Title,
		Discount:       req.Discount,
		Status:         req.Status,
		StationID:      req.StationID,
		CoinReward:     req.CoinReward,
		TargetBadgeIDs: req.TargetBadgeIDs,
	}
	if req.EndDate != nil && *req.EndDate != "" {
		end, err := service.ParseDate(*req.EndDate)
		if err != nil {
			return in, &service.ValidationError{Field: "endDate", Reason: "must be YYYY-MM-DD or RFC 3339"}
		}
		// A plain date covers the whole day.
		if len(*req.EndDate) == len(time.DateOnly) {
			end = end.Add(24*time.Hour - time.Nanosecond)
		}
		in.EndDate = &end
	}
	return in, nil
}

// List handles GET /campaigns.
func (h *CampaignHandlers) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	campaigns, err := h.svc.ListOwned(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}

// Create handles POST /campaigns.
func (h *CampaignHandlers) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req campaignRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	campaign, err := h.svc.Create(r.Context(), actor, in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, campaign)
}

// Update handles PUT /campaigns/{id}.
func (h *CampaignHandlers) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req campaignRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	campaign, err := h.svc.Update(r.Context(), actor, id, in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

// Delete handles DELETE /campaigns/{id}.
func (h *CampaignHandlers) Delete(w http.ResponseWriter, r *http.Request) {
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

// Recommendations handles GET /users/{id}/recommendations.
func (h *CampaignHandlers) Recommendations(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if actor.UserID != userID {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	campaigns, err := h.svc.Recommendations(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}
