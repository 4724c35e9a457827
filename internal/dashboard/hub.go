// Package dashboard streams decoded M-net data to a browser over a
// websocket broadcast hub (spec §4.10's "thin monitor application"
// collaborator). It does not participate in the client state machine; it
// only observes snapshots a poller hands it.
package dashboard

import (
	"sync"

	"github.com/gorilla/websocket"
)

// WSMessage is the envelope every broadcast is marshaled as.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Message type tags carried in WSMessage.Type.
const (
	MsgSnapshot = "snapshot"
	MsgEvent    = "event"
	MsgAlarm    = "alarm"
	MsgStatus   = "status"
)

// WSClient wraps one upgraded connection with a per-connection write mutex;
// concurrent broadcasts must not interleave frames on the same socket.
type WSClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Send writes one JSON message to the client.
func (c *WSClient) Send(msg WSMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// WSHub fans a broadcast out to every currently-registered client.
type WSHub struct {
	mu      sync.Mutex
	clients map[*WSClient]struct{}
}

// NewWSHub returns an empty hub.
func NewWSHub() *WSHub {
	return &WSHub{clients: make(map[*WSClient]struct{})}
}

// Add registers conn and returns its WSClient handle.
func (h *WSHub) Add(conn *websocket.Conn) *WSClient {
	c := &WSClient{conn: conn}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

// Remove unregisters and closes c.
func (h *WSHub) Remove(c *WSClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.conn.Close()
}

// Broadcast sends msg to every registered client, ignoring per-client write
// failures (a dead socket is cleaned up by its own read loop).
func (h *WSHub) Broadcast(msg WSMessage) {
	h.mu.Lock()
	clients := make([]*WSClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		_ = c.Send(msg)
	}
}

// Count returns the number of currently-registered clients.
func (h *WSHub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
