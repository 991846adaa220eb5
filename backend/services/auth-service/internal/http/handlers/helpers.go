package handlers

import (
	"encoding/json"
	"net/http"

	"smartcharge/backend/services/auth-service/internal/models"
	"smartcharge/backend/services/auth-service/internal/service"
)

type sessionResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"tokenType"`
	User      *models.User `json:"user"`
}

func newSessionResponse(s *service.Session) sessionResponse {
	return sessionResponse{Token: s.Token, TokenType: s.TokenType, User: s.User}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
