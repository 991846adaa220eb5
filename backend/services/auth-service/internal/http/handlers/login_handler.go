package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"smartcharge/backend/services/auth-service/internal/service"
)

// NewLoginHandler handles POST /auth/login.
func NewLoginHandler(authService *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	type request struct {
		Email string `json:"email"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		session, err := authService.Login(r.Context(), req.Email)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrEmailRequired):
				writeError(w, http.StatusBadRequest, "email is required")
			case errors.Is(err, service.ErrUnknownUser):
				writeError(w, http.StatusNotFound, "user not found")
			default:
				logger.Error("login failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "failed to login")
			}
			return
		}

		writeJSON(w, http.StatusOK, newSessionResponse(session))
	}
}
