// Package feed broadcasts live game events to websocket spectators.
package feed

import (
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/spudgame/internal/game"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Messages buffered per spectator before it is dropped as too slow
	sendBuffer = 256
)

// Hub fans game events out to connected spectators. Spectators are read
// only: anything they send is discarded. A spectator joining mid-game is
// first sent the events of the current game so far.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu      sync.Mutex
	clients map[*spectator]struct{}
	current [][]byte
	closed  bool
}

type spectator struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (s *spectator) close() {
	s.once.Do(func() { close(s.send) })
}

// NewHub creates a hub
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			// Spectating is read-only, so any origin may watch
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:  logger.WithPrefix("feed"),
		clients: make(map[*spectator]struct{}),
	}
}

// ServeHTTP upgrades the request and registers a spectator
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"))
		_ = conn.Close()
		return
	}
	// Room for the whole replay plus the usual live headroom, so the
	// replay never drops events however long the current game has run
	s := &spectator{conn: conn, send: make(chan []byte, len(h.current)+sendBuffer)}
	for _, msg := range h.current {
		s.send <- msg
	}
	h.clients[s] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("Spectator connected", "remote", r.RemoteAddr, "total", total)

	go h.writePump(s)
	go h.readPump(s)
}

// OnEvent implements game.EventSubscriber
func (h *Hub) OnEvent(event game.GameEvent) {
	data, err := game.MarshalEvent(event)
	if err != nil {
		h.logger.Error("Failed to encode event", "type", event.EventType(), "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	if event.EventType() == game.EventTypeGameStart {
		h.current = h.current[:0]
	}
	h.current = append(h.current, data)

	for s := range h.clients {
		select {
		case s.send <- data:
		default:
			h.logger.Warn("Spectator too slow, dropping")
			delete(h.clients, s)
			s.close()
		}
	}
}

// ClientCount returns the number of connected spectators
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every spectator and refuses new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for s := range h.clients {
		delete(h.clients, s)
		s.close()
	}
}

func (h *Hub) unregister(s *spectator) {
	h.mu.Lock()
	_, ok := h.clients[s]
	delete(h.clients, s)
	total := len(h.clients)
	h.mu.Unlock()

	s.close()
	if ok {
		h.logger.Info("Spectator disconnected", "total", total)
	}
}

func (h *Hub) readPump(s *spectator) {
	defer h.unregister(s)

	s.conn.SetReadLimit(512)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug("Unexpected websocket close", "error", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(s *spectator) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
