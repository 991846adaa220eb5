package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"smartcharge/backend/services/reservation-service/internal/service"
)

// UserHandlers serves profiles, the leaderboard and badges.
type UserHandlers struct {
	svc    *service.UserService
	logger *zap.Logger
}

// NewUserHandlers builds handlers.
func NewUserHandlers(svc *service.UserService, logger *zap.Logger) *UserHandlers {
	return &UserHandlers{svc: svc, logger: logger}
}

// Profile handles GET /users/{id}.
func (h *UserHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user, err := h.svc.Profile(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type profileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateProfile handles PATCH /users/{id}.
func (h *UserHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req profileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.svc.UpdateProfile(r.Context(), actor, id, req.Name, req.Email)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Leaderboard handles GET /leaderboard?limit=N.
func (h *UserHandlers) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	entries, err := h.svc.Leaderboard(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Badges handles GET /badges.
func (h *UserHandlers) Badges(w http.ResponseWriter, r *http.Request) {
	badges, err := h.svc.Badges(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, badges)
}
