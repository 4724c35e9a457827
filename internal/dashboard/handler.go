package dashboard

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// upgrader upgrades HTTP requests to websockets.
//
// Security note: CheckOrigin returns true to keep local monitoring
// frictionless. Restrict this if the dashboard is ever exposed beyond the
// turbine site's own network.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades r to a websocket, registers it with hub, and blocks
// reading (and discarding) inbound frames purely to detect disconnects.
func Handler(hub *WSHub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := hub.Add(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				hub.Remove(client)
				return
			}
		}
	}
}
