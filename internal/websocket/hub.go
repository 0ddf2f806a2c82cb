// Package websocket streams catalog change events to connected clients.
package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"bookstore/internal/auth"
	"bookstore/internal/model"
	"bookstore/internal/repository"
	"bookstore/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Event names pushed over the feed.
const (
	EventBookCreated = "book.created"
	EventBookUpdated = "book.updated"
	EventBookDeleted = "book.deleted"
)

// CatalogEvent is the wire format of one feed message.
type CatalogEvent struct {
	Event string      `json:"event"`
	Book  *model.Book `json:"book,omitempty"`
	ID    uint        `json:"bookId,omitempty"`
}

// Client represents a single connected WebSocket client.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
}

// Hub maintains the set of active clients and broadcasts catalog events
// to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// PublishBook queues a catalog event. Safe to call from any goroutine;
// never blocks the caller on slow consumers.
func (h *Hub) PublishBook(event string, book *model.Book) {
	msg := CatalogEvent{Event: event, Book: book}
	if book != nil {
		msg.ID = book.ID
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("failed to encode catalog event: %v", err)
		return
	}
	select {
	case h.broadcast <- payload:
	default:
	}
}

// PublishDeleted queues a deletion event carrying only the id.
func (h *Hub) PublishDeleted(id uint) {
	payload, err := json.Marshal(CatalogEvent{Event: EventBookDeleted, ID: id})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- payload:
	default:
	}
}

// Run starts the dispatch loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (c *Client) writePump() {
	defer func() {
		_ = c.Conn.Close()
	}()
	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		_ = c.Conn.Close()
	}()
	for {
		// Reads only keep the connection alive; the feed is one-way.
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			break
		}
	}
}

// ServeWs authenticates a feed subscription via the token query
// parameter and upgrades the connection. Subscribers need the READ
// authority.
func ServeWs(hub *Hub, c *gin.Context, validator *auth.TokenValidator, users repository.UserRepository) {
	tokenString := c.Query("token")
	if tokenString == "" {
		response.AbortError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	subject, err := validator.Subject(tokenString)
	if err != nil {
		log.Printf("websocket connection rejected: %v", err)
		response.AbortError(c, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	user, err := users.FindBySubjectID(c.Request.Context(), subject)
	if err != nil {
		response.AbortError(c, http.StatusUnauthorized, "User not found in the system")
		return
	}
	if !user.IsActive {
		response.AbortError(c, http.StatusForbidden, "User account is deactivated")
		return
	}

	hasRead := false
	for _, a := range user.Authorities() {
		if a == model.PermRead {
			hasRead = true
			break
		}
	}
	if !hasRead {
		response.AbortError(c, http.StatusForbidden, "Access denied: insufficient permissions")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	client := &Client{Hub: hub, Conn: conn, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	go client.readPump()
}
