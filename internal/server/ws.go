package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 8
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// StateHub broadcasts renderer state to WebSocket clients. Each client has
// a small send buffer; a client that falls behind misses frames rather
// than stalling the frame loop. New clients receive the latest state
// immediately.
type StateHub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	latest  []byte
	closed  bool
}

// NewStateHub creates an empty hub.
func NewStateHub() *StateHub {
	return &StateHub{clients: make(map[*client]struct{})}
}

// Publish encodes v as JSON and queues it for every client.
func (h *StateHub) Publish(v any) error {
	msg, err := json.Marshal(v)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest = msg
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
	return nil
}

// Clients returns the number of connected clients.
func (h *StateHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client. Later connections are refused.
func (h *StateHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

func (h *StateHub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	if h.latest != nil {
		c.send <- h.latest
	}
	return true
}

func (h *StateHub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		close(c.send)
		delete(h.clients, c)
	}
}

// ServeHTTP handles WebSocket upgrade requests on /api/state.
func (h *StateHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.register(c) {
		return
	}
	defer h.unregister(c)

	go c.writeLoop()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *client) writeLoop() {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.conn.Close()
			for range c.send {
			}
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}
