package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/adastrea-verse/internal/engine"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	streamCatchUp  = 50
	maxClientFrame = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleStream upgrades to a websocket and pushes simulation events as JSON
// frames. A new client first receives the most recent buffered events.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	events, unsubscribe := s.Sim.Subscribe()
	s.Metrics.StreamConnected()
	slog.Info("stream client connected", "remote", r.RemoteAddr)

	done := make(chan struct{})
	go readPump(conn, done)
	writePump(conn, s.Sim.RecentEvents(streamCatchUp), events, done)

	unsubscribe()
	conn.Close()
	s.Metrics.StreamDisconnected()
	slog.Info("stream client disconnected", "remote", r.RemoteAddr)
}

// readPump drains client frames so control messages are processed, and
// closes done when the connection fails.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(maxClientFrame)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("stream read error", "error", err)
			}
			return
		}
	}
}

// writePump sends the catch-up backlog, then live events, pinging the
// client periodically. It returns when the client goes away or the event
// channel closes.
func writePump(conn *websocket.Conn, backlog []engine.Event, events <-chan engine.Event, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	var last uint64
	for _, e := range backlog {
		if err := writeEvent(conn, e); err != nil {
			return
		}
		last = e.Seq
	}

	for {
		select {
		case e, ok := <-events:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// Skip events already sent in the backlog.
			if e.Seq <= last {
				continue
			}
			if err := writeEvent(conn, e); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, e engine.Event) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(e)
}
