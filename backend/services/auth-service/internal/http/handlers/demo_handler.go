package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"smartcharge/backend/services/auth-service/internal/service"
)

// NewDemoHandler handles POST /auth/demo.
func NewDemoHandler(authService *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := authService.Demo(r.Context())
		if err != nil {
			logger.Error("demo bootstrap failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to start demo session")
			return
		}
		writeJSON(w, http.StatusOK, newSessionResponse(session))
	}
}
