package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Cody994/21905-SerialController/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// wsClient is one WebSocket connection. Writes from the request loop and
// the ping loop are serialized by mu.
type wsClient struct {
	conn       *websocket.Conn
	remoteAddr string
	mu         sync.Mutex
}

func (c *wsClient) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

func (c *wsClient) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.write(websocket.TextMessage, data)
}

// handleWebSocket upgrades the request and serves Request envelopes until
// the peer goes away or the server shuts down
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("WebSocket upgrade failed", zap.String("remote_addr", r.RemoteAddr), zap.Error(err))
		return
	}

	client := &wsClient{conn: conn, remoteAddr: r.RemoteAddr}
	s.track(client, true)
	logging.LogConnection(client.remoteAddr, "websocket_opened")

	defer func() {
		s.track(client, false)
		_ = conn.Close()
		logging.LogConnection(client.remoteAddr, "websocket_closed")
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go s.pingLoop(client, done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Info("WebSocket read error", zap.String("remote_addr", client.remoteAddr), zap.Error(err))
			}
			return
		}

		var req Request
		var resp Response
		if err := json.Unmarshal(data, &req); err != nil {
			resp = respond("", nil, badRequest(err))
		} else {
			result, err := s.execute(r.Context(), req)
			resp = respond(req.ID, result, err)
		}

		if err := client.writeJSON(resp); err != nil {
			logging.Info("WebSocket write failed", zap.String("remote_addr", client.remoteAddr), zap.Error(err))
			return
		}
	}
}

func (s *Server) pingLoop(c *wsClient, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// track adds or removes a live client
func (s *Server) track(c *wsClient, add bool) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if add {
		s.clients[c] = struct{}{}
	} else {
		delete(s.clients, c)
	}
}

// closeClients sends a close frame to every live client
func (s *Server) closeClients() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for c := range s.clients {
		logging.Info("Closing active connection", zap.String("remote_addr", c.remoteAddr))
		_ = c.write(websocket.CloseMessage, msg)
		_ = c.conn.Close()
	}
}
