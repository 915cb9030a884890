package app

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Devis28/melody-now/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 20 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The stream is public read-only data; any origin may subscribe.
	CheckOrigin: func(*http.Request) bool { return true },
}

// hub fans the now-playing payload out to connected websocket clients.
type hub struct {
	log *logger.Logger

	mu      sync.Mutex
	clients map[string]*wsClient
	closed  bool
}

type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

func newHub(log *logger.Logger) *hub {
	return &hub{
		log:     log,
		clients: make(map[string]*wsClient),
	}
}

// broadcast queues payload for every connected client. Slow clients that
// cannot keep up are dropped rather than blocking the loop.
func (h *hub) broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.log.WithField("client", id).Warn("dropping slow websocket client")
			close(c.send)
			delete(h.clients, id)
			wsClients.Dec()
		}
	}
}

func (h *hub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// close disconnects every client and rejects future registrations.
func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, c := range h.clients {
		close(c.send)
		delete(h.clients, id)
		wsClients.Dec()
	}
}

func (h *hub) register(conn *websocket.Conn) *wsClient {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	c := &wsClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, 8),
	}
	h.clients[c.id] = c
	wsClients.Inc()
	return c
}

func (h *hub) unregister(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; ok {
		close(c.send)
		delete(h.clients, c.id)
		wsClients.Dec()
	}
}

// handleWS upgrades the request and streams now-playing payloads until the
// client disconnects.
func (s *Service) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithField("error", err).Warn("websocket upgrade failed")
		return
	}

	c := s.hub.register(conn)
	if c == nil {
		conn.Close()
		return
	}

	// Send the latest known payload immediately so new subscribers do not
	// wait a full refresh interval.
	if payload := s.lastPayload(); payload != nil {
		select {
		case c.send <- payload:
		default:
		}
	}

	go s.writePump(c)
	go s.readPump(c)
}

func (s *Service) writePump(c *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Service) readPump(c *wsClient) {
	defer func() {
		s.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
