package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Identify resolves the authenticated user of an upgrade request.
type Identify func(r *http.Request) (int64, bool)

// Server upgrades HTTP requests to per-user event streams.
type Server struct {
	hub          *Hub
	identify     Identify
	pingInterval time.Duration
	writeTimeout time.Duration
	logger       *zap.Logger
	upgrader     websocket.Upgrader
	ctx          context.Context
}

// NewServer builds ws server. Connections live until the client leaves or ctx ends.
func NewServer(ctx context.Context, hub *Hub, identify Identify, pingInterval, writeTimeout time.Duration, logger *zap.Logger) *Server {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &Server{
		hub:          hub,
		identify:     identify,
		pingInterval: pingInterval,
		writeTimeout: writeTimeout,
		logger:       logger,
		ctx:          ctx,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWS is the HTTP handler for GET /ws.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.identify(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	connection := NewConnection(userID, conn, s.pingInterval, s.writeTimeout, s.logger, s.hub.Remove)
	s.hub.Add(connection)
	go connection.Start(s.ctx)
	s.logger.Info("client connected", zap.Int64("user_id", userID))
}
