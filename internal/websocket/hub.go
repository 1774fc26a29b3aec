package websocket

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/websocket/v2"
)

// Client wraps a WebSocket connection with a write lock.
type Client struct {
	Conn *websocket.Conn
	Mu   sync.Mutex
}

// Hub fans task lifecycle events out to connected clients.
type Hub struct {
	Clients    map[*Client]bool
	Broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client
}

// TaskEvents is the hub fed by the task handlers, started in main.
var TaskEvents = NewHub()

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

type taskEvent struct {
	Event string      `json:"event"`
	Task  interface{} `json:"task"`
}

// PublishTask broadcasts a lifecycle event. Best-effort: if the hub is not
// running or its buffer is full the event is dropped rather than blocking
// the request.
func (h *Hub) PublishTask(event string, task interface{}) {
	payload, err := json.Marshal(taskEvent{Event: event, Task: task})
	if err != nil {
		return
	}
	select {
	case h.Broadcast <- payload:
	default:
	}
}

// Run manages register, unregister, and broadcast until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.Clients[client] = true
		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				client.Conn.Close()
			}
		case message := <-h.Broadcast:
			for client := range h.Clients {
				client.Mu.Lock()
				err := client.Conn.WriteMessage(websocket.TextMessage, message)
				client.Mu.Unlock()
				if err != nil {
					delete(h.Clients, client)
					client.Conn.Close()
				}
			}
		}
	}
}
