package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/NasaVasa/partprice/internal/domain"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	sendBuffer   = 16
	writeTimeout = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
)

type client struct {
	userID uint
	conn   *websocket.Conn
	send   chan domain.Notification
	done   chan struct{}
	once   sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Hub keeps the open notification sockets of every connected user.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu      sync.RWMutex
	clients map[uint]map[*client]struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[uint]map[*client]struct{}),
	}
}

func (h *Hub) Name() string { return "websocket" }

// Deliver pushes the notification to every socket the user has open.
// A user with no open socket is not an error.
func (h *Hub) Deliver(_ context.Context, notification domain.Notification) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[notification.UserID] {
		select {
		case c.send <- notification:
		default:
			h.logger.Warn("ws send buffer full, dropping notification",
				zap.Uint("user_id", notification.UserID),
				zap.Uint("notification_id", notification.ID),
			)
		}
	}
	return nil
}

// ServeWS upgrades the request and blocks until the socket closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID uint) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Uint("user_id", userID), zap.Error(err))
		return
	}

	c := &client{
		userID: userID,
		conn:   conn,
		send:   make(chan domain.Notification, sendBuffer),
		done:   make(chan struct{}),
	}
	h.register(c)
	h.logger.Info("ws client connected", zap.Uint("user_id", userID))

	go h.writeLoop(c)
	h.readLoop(c)

	h.unregister(c)
	c.close()
	h.logger.Info("ws client disconnected", zap.Uint("user_id", userID))
}

func (h *Hub) ClientCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Close drops every open socket.
func (h *Hub) Close() {
	h.mu.Lock()
	all := h.clients
	h.clients = make(map[uint]map[*client]struct{})
	h.mu.Unlock()

	for _, set := range all {
		for c := range set {
			c.close()
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[c.userID]
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
}

// readLoop only services control frames; clients have nothing to send.
func (h *Hub) readLoop(c *client) {
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("ws read failed", zap.Uint("user_id", c.userID), zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case notification := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(notification); err != nil {
				h.logger.Warn("ws write failed", zap.Uint("user_id", c.userID), zap.Error(err))
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}
