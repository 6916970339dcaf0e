// internal/api/websocket.go
package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/inkforge/storyassist/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// single-user tool; origin checks belong to the deployment proxy
		return true
	},
}

const (
	wsWriteTimeout = 10 * time.Second
	wsPongTimeout  = 60 * time.Second
	wsPingInterval = 50 * time.Second
)

// wsClient is one connected shell listening for session state updates
type wsClient struct {
	conn      *websocket.Conn
	sessionID string
	send      chan []byte
}

// Hub fans session state out to every shell watching a session
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*wsClient]bool // sessionID -> clients
	logger  *zap.Logger
}

// NewHub creates the WebSocket hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*wsClient]bool),
		logger:  logger.Named("WSHub"),
	}
}

// Serve upgrades the request and streams state updates for one session
// until the client disconnects
func (h *Hub) Serve(c *gin.Context, sessionID string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &wsClient{
		conn:      conn,
		sessionID: sessionID,
		send:      make(chan []byte, 16),
	}
	h.register(client)

	go h.writePump(client)
	h.readPump(client)
}

// Broadcast pushes a session state snapshot to every client watching it.
// Slow clients drop updates instead of blocking the editing path.
func (h *Hub) Broadcast(state services.SessionState) {
	payload, err := json.Marshal(state)
	if err != nil {
		h.logger.Error("failed to encode session state", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[state.ID] {
		select {
		case client.send <- payload:
		default:
			h.logger.Warn("dropping update for slow websocket client",
				zap.String("sessionID", state.ID))
		}
	}
}

// ConnectionCount reports how many shells are connected across all sessions
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.clients {
		total += len(conns)
	}
	return total
}

func (h *Hub) register(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[client.sessionID] == nil {
		h.clients[client.sessionID] = make(map[*wsClient]bool)
	}
	h.clients[client.sessionID][client] = true
}

func (h *Hub) unregister(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[client.sessionID]; ok {
		if _, ok := conns[client]; ok {
			delete(conns, client)
			close(client.send)
			if len(conns) == 0 {
				delete(h.clients, client.sessionID)
			}
		}
	}
}

// readPump drains incoming frames; the protocol is one-way, so reads only
// serve to detect disconnects and answer pings
func (h *Hub) readPump(client *wsClient) {
	defer func() {
		h.unregister(client)
		client.conn.Close()
	}()

	client.conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
		return nil
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(client *wsClient) {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
