package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const wsWriteTimeout = 5 * time.Second

// upgrader configures the WebSocket handshake.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // Server binds to loopback by default.
	},
}

// handleWebSocket handles GET /report/ws. The client gets the current report
// right away and every new report after each scan.
func (s *HTTPServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	res, _, err := s.Latest(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, fmt.Sprintf("scan failed: %v", err))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	// The snapshot is taken under the hub lock so a scan finishing now is
	// either in the first message or in the next broadcast.
	s.hub.add(conn, func() wsMessage {
		s.mu.RLock()
		current := s.latest
		s.mu.RUnlock()
		if current == nil {
			current = res
		}
		return wsMessage{Type: "report", Report: &current.Report}
	})

	// Read until the client goes away; incoming messages are ignored.
	go func() {
		defer s.hub.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseGoingAway,
					websocket.CloseNormalClosure,
				) {
					s.logger.Debug().Err(err).Msg("WebSocket read error")
				}
				return
			}
		}
	}()
}

// hub tracks connected WebSocket clients. Writes happen under mu so each
// connection has a single writer.
type hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func newHub() *hub {
	return &hub{clients: make(map[*websocket.Conn]bool)}
}

// add sends the message built by first and registers the connection,
// both under mu so no broadcast falls between them.
func (h *hub) add(conn *websocket.Conn, first func() wsMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := writeJSON(conn, first()); err != nil {
		conn.Close()
		return
	}
	h.clients[conn] = true
}

func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[conn] {
		delete(h.clients, conn)
	}
	conn.Close()
}

func (h *hub) broadcast(msg wsMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := writeJSON(conn, msg); err != nil {
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		conn.Close()
	}
	h.clients = make(map[*websocket.Conn]bool)
}

func writeJSON(conn *websocket.Conn, msg wsMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}
