package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"coinpulse/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// TickerMessage is pushed to every connected client when a fresh market
// batch lands.
type TickerMessage struct {
	Type      string                  `json:"type"`
	Snapshots []models.MarketSnapshot `json:"snapshots"`
}

// WSHub manages websocket connections and broadcasts market batches.
type WSHub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.RWMutex
}

func NewWSHub() *WSHub {
	return &WSHub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}
}

// Run owns the client map. Must be called in a goroutine.
func (h *WSHub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("[ws] client connected, total=%d", total)

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, exists := h.clients[conn]; exists {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastBatch pushes a fresh market batch to every client.
// Drops the message when the buffer is full rather than blocking a writer.
func (h *WSHub) BroadcastBatch(snapshots []models.MarketSnapshot) {
	data, err := json.Marshal(TickerMessage{Type: "market_batch", Snapshots: snapshots})
	if err != nil {
		log.Printf("[ws] marshal failed: %v", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		log.Println("[ws] broadcast buffer full, dropping batch")
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// portal frontend is served from another origin in development
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades the connection and parks a reader goroutine so client
// disconnects are noticed.
func (h *APIHandler) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	h.hub.register <- conn

	go func() {
		defer func() { h.hub.unregister <- conn }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
