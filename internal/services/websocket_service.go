package services

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WebSocketMessage represents a message pushed over the notification feed
type WebSocketMessage struct {
	Type    string      `json:"type"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	ID     string
	UserID string
	Conn   *websocket.Conn
	Send   chan WebSocketMessage
	hub    *Hub
}

// Hub maintains the set of connected clients keyed by user
type Hub struct {
	clients    map[*Client]bool
	users      map[string][]*Client
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

// WebSocketService pushes live notifications to connected users
type WebSocketService struct {
	hub      *Hub
	upgrader websocket.Upgrader
	auth     *AuthService
}

// NewWebSocketService creates a new WebSocket service
func NewWebSocketService(auth *AuthService) *WebSocketService {
	hub := &Hub{
		clients:    make(map[*Client]bool),
		users:      make(map[string][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}

	service := &WebSocketService{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// CORS middleware already gates browser origins
				return true
			},
		},
		auth: auth,
	}

	go hub.run()

	return service
}

// HandleWebSocket upgrades the connection and attaches it to the user's feed.
// The token comes from the auth middleware or, for browser WebSocket clients
// that cannot set headers, from the token query parameter.
func (s *WebSocketService) HandleWebSocket(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Authentication required"})
			return
		}
		claims, err := s.auth.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid token"})
			return
		}
		userID = claims.UserID
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		ID:     uuid.New().String(),
		UserID: userID.(string),
		Conn:   conn,
		Send:   make(chan WebSocketMessage, 64),
		hub:    s.hub,
	}

	s.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// SendToUser pushes a message to every connection the user has open
func (s *WebSocketService) SendToUser(userID string, message WebSocketMessage) {
	s.hub.mutex.RLock()
	clients := append([]*Client(nil), s.hub.users[userID]...)
	s.hub.mutex.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- message:
		default:
			// Slow consumer, drop the connection
			s.hub.unregister <- client
		}
	}
}

// ConnectedUsers returns the number of users with at least one open connection
func (s *WebSocketService) ConnectedUsers() int {
	s.hub.mutex.RLock()
	defer s.hub.mutex.RUnlock()
	return len(s.hub.users)
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.users[client.UserID] = append(h.users[client.UserID], client)
			h.mutex.Unlock()

			select {
			case client.Send <- WebSocketMessage{Type: "connected", Message: "Connected to notification feed"}:
			default:
			}

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)

				remaining := h.users[client.UserID][:0]
				for _, c := range h.users[client.UserID] {
					if c != client {
						remaining = append(remaining, c)
					}
				}
				if len(remaining) == 0 {
					delete(h.users, client.UserID)
				} else {
					h.users[client.UserID] = remaining
				}
			}
			h.mutex.Unlock()
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// The feed is one-way; reads only service pings and detect closure
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(45 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
