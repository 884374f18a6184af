package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// eventInterval is how often the websocket feed pushes a progress snapshot.
const eventInterval = 500 * time.Millisecond

var upgrader = websocket.Upgrader{
	// The surface binds to loopback only; the editor UI connects from a
	// file:// or app origin, so origin checking is disabled.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleEvents streams progress snapshots over a websocket until the
// client disconnects. The payload is the same Progress document the
// polling endpoint returns.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(eventInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := conn.WriteJSON(s.control.Progress()); err != nil {
				return
			}
		}
	}
}
