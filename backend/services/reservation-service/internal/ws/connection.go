package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	sendBuffer   = 16
	readLimit    = 4096
	pongDeadline = 60 * time.Second
)

// Connection is one live websocket of a user. Clients only listen; inbound frames are read
// to service control messages and otherwise ignored.
type Connection struct {
	userID       int64
	ws           *websocket.Conn
	send         chan []byte
	done         chan struct{}
	closeOnce    sync.Once
	pingInterval time.Duration
	writeTimeout time.Duration
	logger       *zap.Logger
	onClose      func(*Connection)
}

// NewConnection builds connection wrapper.
func NewConnection(userID int64, ws *websocket.Conn, pingInterval, writeTimeout time.Duration, logger *zap.Logger, onClose func(*Connection)) *Connection {
	return &Connection{
		userID:       userID,
		ws:           ws,
		send:         make(chan []byte, sendBuffer),
		done:         make(chan struct{}),
		pingInterval: pingInterval,
		writeTimeout: writeTimeout,
		logger:       logger,
		onClose:      onClose,
	}
}

// UserID returns the owner of the connection.
func (c *Connection) UserID() int64 {
	return c.userID
}

// Start launches the write pump and blocks in the read pump.
func (c *Connection) Start(ctx context.Context) {
	go c.writePump(ctx)
	c.readPump(ctx)
}

func (c *Connection) readPump(ctx context.Context) {
	defer c.Close()
	c.ws.SetReadLimit(readLimit)
	c.ws.SetReadDeadline(time.Now().Add(pongDeadline))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongDeadline))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if _, _, err := c.ws.ReadMessage(); err != nil {
			c.logger.Debug("connection read closed", zap.Int64("user_id", c.userID), zap.Error(err))
			return
		}
	}
}

func (c *Connection) writePump(ctx context.Context) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()
	defer c.Close()

	for {
		select {
		case <-ctx.Done():
			_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return
		case <-c.done:
			return
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Send enqueues a message. Slow clients lose messages instead of blocking publishers.
func (c *Connection) Send(msg []byte) {
	select {
	case <-c.done:
	case c.send <- msg:
	default:
		c.logger.Warn("dropping outgoing message, buffer full", zap.Int64("user_id", c.userID))
	}
}

// Close tears the connection down once.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.Close()
		if c.onClose != nil {
			c.onClose(c)
		}
	})
}

func (c *Connection) write(messageType int, data []byte) error {
	c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.ws.WriteMessage(messageType, data)
}
