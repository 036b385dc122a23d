package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/huzidev/dev-forum-api/internal/middleware"
	"github.com/huzidev/dev-forum-api/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per user
	maxConnsPerUser = 12
	// Max total connections
	maxTotalConns = 10000
)

var (
	ErrServerFull = errors.New("server connection limit reached")
	ErrUserFull   = errors.New("user connection limit reached")
)

// Hub maps a user id to that user's open sockets on this instance.
type Hub struct {
	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	totalConns int
	closed     bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[uint]map[*Client]struct{})}
}

// Register a connection for a given userID. Returns the Client or error if limits exceeded.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || h.totalConns >= maxTotalConns {
		return nil, ErrServerFull
	}

	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		return nil, ErrUserFull
	}

	client := newClient(h, conn, userID)
	m[client] = struct{}{}
	h.totalConns++
	observability.WebSocketConnections.Inc()
	return client, nil
}

// UnregisterClient removes the client and closes its send channel. It is safe to call twice.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.UserID]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	close(client.Send)
	h.totalConns--
	observability.WebSocketConnections.Dec()
	if len(m) == 0 {
		delete(h.conns, client.UserID)
	}
}

// Broadcast sends message to all connections for userID.
func (h *Hub) Broadcast(userID uint, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for c := range h.conns[userID] {
		c.TrySend(data)
	}
}

// ConnectionCount returns the number of open sockets of userID.
func (h *Hub) ConnectionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// StartWiring connects the Notifier to this hub. With Redis it subscribes to
// every user channel; without Redis events are delivered in-process.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	n.SetLocalSink(h.Broadcast)
	return n.StartPatternSubscriber(ctx, func(channel, payload string) {
		userID, err := parseUserChannel(channel)
		if err != nil {
			middleware.Logger.Warn("invalid notification channel", "channel", channel)
			return
		}
		h.Broadcast(userID, payload)
	})
}

func parseUserChannel(channel string) (uint, error) {
	if !strings.HasPrefix(channel, "notifications:user:") {
		return 0, fmt.Errorf("unexpected channel %q", channel)
	}
	var userID uint
	if _, err := fmt.Sscanf(channel, userChannelFormat, &userID); err != nil {
		return 0, err
	}
	return userID, nil
}

// Shutdown closes every client's send channel. Each WritePump then writes the
// close frame and drops its connection.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	closing := 0
	for _, userConns := range h.conns {
		for client := range userConns {
			close(client.Send)
			observability.WebSocketConnections.Dec()
			closing++
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
	h.totalConns = 0
	middleware.Logger.Info("notification hub shut down", "connections", closing)
	return nil
}
