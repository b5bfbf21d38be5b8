package http

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"budgetku/internal/core"
	"budgetku/internal/log"
	"budgetku/internal/store"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientSendSize = 16
)

// Event is pushed to every websocket client.
type Event struct {
	Type    string  `json:"type"`
	Op      string  `json:"op,omitempty"`
	Version uint64  `json:"version"`
	Month   string  `json:"month,omitempty"`
	Spent   float64 `json:"spent,omitempty"`
	Budget  float64 `json:"budget,omitempty"`
}

const (
	EventHello        = "hello"
	EventStateChanged = "state_changed"
	EventOverspending = "overspending"
)

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans store events out to connected websocket clients. Broadcasting
// never blocks: a client whose buffer is full is disconnected.
type Hub struct {
	logger   *log.Logger
	upgrader websocket.Upgrader
	version  func() uint64

	mu      sync.Mutex
	clients map[*wsClient]struct{}
	closed  bool
}

func NewHub(logger *log.Logger, version func() uint64, checkOrigin func(*http.Request) bool) *Hub {
	return &Hub{
		logger:  logger.WithComponent(log.ComponentEvents),
		version: version,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		clients: make(map[*wsClient]struct{}),
	}
}

// HandleChange is a store.ChangeHandler.
func (h *Hub) HandleChange(ev store.ChangeEvent) {
	h.Broadcast(Event{Type: EventStateChanged, Op: ev.Op, Version: ev.Version})
}

// HandleOverspend is a store.OverspendHandler.
func (h *Hub) HandleOverspend(o core.Overspend) {
	h.Broadcast(Event{
		Type:    EventOverspending,
		Version: h.version(),
		Month:   string(o.Month),
		Spent:   o.Spent,
		Budget:  o.Budget,
	})
}

// Broadcast sends ev to every client.
func (h *Hub) Broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("Failed to marshal event", log.FieldError, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("Websocket client too slow, disconnecting")
			h.removeLocked(c)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeWS upgrades the request and streams events until the client leaves.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Websocket upgrade failed", log.FieldError, err)
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, clientSendSize)}
	hello, _ := json.Marshal(Event{Type: EventHello, Version: h.version()})
	c.send <- hello

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.InfoContext(r.Context(), "Websocket client connected", "clients", n)

	go h.writePump(c)
	h.readPump(c)
}

// readPump discards client messages and notices disconnects.
func (h *Hub) readPump(c *wsClient) {
	defer h.remove(c)

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *wsClient) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}
