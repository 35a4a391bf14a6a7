package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"svgod/internal/orchestrator"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum inbound message size; clients only send control frames.
	maxEventMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// eventsHandler streams orchestrator events to a websocket client. Each
// client gets its own hub subscription; a client that stops reading loses
// events rather than blocking compression cycles.
func eventsHandler(hub *orchestrator.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			if zlog != nil {
				zlog.Warn().Err(err).Msg("websocket upgrade failed")
			}
			return
		}
		sub, cancel := hub.Subscribe()
		go writeEvents(conn, sub, cancel)

		conn.SetReadLimit(maxEventMessageSize)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		cancel()
	}
}

func writeEvents(conn *websocket.Conn, sub <-chan orchestrator.Event, cancel func()) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cancel()
		_ = conn.Close()
	}()
	for {
		select {
		case e, ok := <-sub:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
