package services

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one live websocket connection.
type Client struct {
	UserID uuid.UUID
	Role   string
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *Hub
}

// Hub maintains the set of active clients and fans messages out to them.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	stopped    chan struct{}
	mutex      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopped:    make(chan struct{}),
	}
}

// Run owns registration; it returns when done is closed. Once it has
// returned, join refuses new clients and leave no longer blocks.
func (h *Hub) Run(done <-chan struct{}) {
	defer close(h.stopped)
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Debug().Str("user_id", client.UserID.String()).Str("role", client.Role).Msg("websocket client connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mutex.Unlock()
			log.Debug().Str("user_id", client.UserID.String()).Msg("websocket client disconnected")

		case <-done:
			h.mutex.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mutex.Unlock()
			return
		}
	}
}

// join registers c, or reports false when the hub has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.stopped:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
	}
}

// WebSocketMessage is the envelope pushed to clients.
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func (h *Hub) deliver(match func(*Client) bool, msgType string, data interface{}) int {
	payload, err := json.Marshal(WebSocketMessage{Type: msgType, Data: data})
	if err != nil {
		log.Error().Err(err).Str("type", msgType).Msg("failed to marshal websocket message")
		return 0
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	delivered := 0
	for client := range h.clients {
		if !match(client) {
			continue
		}
		select {
		case client.Send <- payload:
			delivered++
		default:
			log.Warn().Str("user_id", client.UserID.String()).Msg("websocket send buffer full, dropping message")
		}
	}
	return delivered
}

// BroadcastToRole sends to every client with the given role and returns the delivery count.
func (h *Hub) BroadcastToRole(role, msgType string, data interface{}) int {
	return h.deliver(func(c *Client) bool { return c.Role == role }, msgType, data)
}

func (h *Hub) BroadcastToUser(userID uuid.UUID, msgType string, data interface{}) int {
	return h.deliver(func(c *Client) bool { return c.UserID == userID }, msgType, data)
}

func (h *Hub) ConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the request and starts the client pumps.
func HandleWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request, userID uuid.UUID, role string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		UserID: userID,
		Role:   role,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
		Hub:    hub,
	}
	if !hub.join(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump only drains control frames; clients do not send commands.
func (c *Client) readPump() {
	defer func() {
		c.Hub.leave(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("user_id", c.UserID.String()).Msg("websocket read error")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn().Err(err).Str("user_id", c.UserID.String()).Msg("websocket write error")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
