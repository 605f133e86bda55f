package remote

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// message is the outgoing websocket frame
type message struct {
	Type   string  `json:"type"` // "status" or "error"
	Status *Status `json:"status,omitempty"`
	Error  string  `json:"error,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan message
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// hub tracks connected websocket clients
type hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[*client]struct{})}
}

func (h *hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
}

func (h *hub) broadcast(st Status) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- message{Type: "status", Status: &st}:
		default:
			// full buffer, the client catches up with the next update
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error: websocket upgrade: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan message, 16)}
	st := s.target.Status()
	c.send <- message{Type: "status", Status: &st}
	s.hub.add(c)

	go c.writeLoop()
	s.readLoop(c)
}

func (s *Server) readLoop(c *client) {
	defer func() {
		s.hub.remove(c)
		c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Warning: websocket read: %v", err)
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(msg, &cmd); err != nil {
			s.reply(c, message{Type: "error", Error: "invalid message format"})
			continue
		}
		if err := cmd.Validate(); err != nil {
			s.reply(c, message{Type: "error", Error: err.Error()})
			continue
		}
		s.target.Dispatch(cmd)
	}
}

func (s *Server) reply(c *client, m message) {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if _, ok := s.hub.clients[c]; !ok {
		return
	}
	select {
	case c.send <- m:
	default:
	}
}

func (c *client) writeLoop() {
	for m := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(m); err != nil {
			log.Printf("Warning: websocket write: %v", err)
			c.conn.Close()
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	c.conn.Close()
}
