package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub fans status messages out to connected clients, either scoped to one
// resource ID or globally for list pages.
type Hub struct {
	Clients       map[string]map[*websocket.Conn]*Client
	GlobalClients map[*websocket.Conn]*Client
	Mutex         sync.RWMutex
}

var H = Hub{
	Clients:       make(map[string]map[*websocket.Conn]*Client),
	GlobalClients: make(map[*websocket.Conn]*Client),
}

// StatusUpdate reports processing progress for one resource.
type StatusUpdate struct {
	Resource   string  `json:"resource"`
	ResourceID string  `json:"resource_id"`
	Status     string  `json:"status"`
	Progress   float64 `json:"progress"`
	Error      string  `json:"error,omitempty"`
}

func (h *Hub) Register(resourceID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if _, ok := h.Clients[resourceID]; !ok {
		h.Clients[resourceID] = make(map[*websocket.Conn]*Client)
	}

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}
	h.Clients[resourceID][conn] = client

	go h.readPump(resourceID, conn)
	go h.writePump(resourceID, conn)
}

func (h *Hub) RegisterGlobal(conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}
	h.GlobalClients[conn] = client

	go h.readGlobalPump(conn)
	go h.writeGlobalPump(conn)
}

func (h *Hub) Broadcast(resourceID string, data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	if clients, ok := h.Clients[resourceID]; ok {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

func (h *Hub) BroadcastGlobal(data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	for _, client := range h.GlobalClients {
		select {
		case client.Send <- data:
		default:
		}
	}
}

// ClientCount is reported by the health endpoint.
func (h *Hub) ClientCount() int {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	count := len(h.GlobalClients)
	for _, clients := range h.Clients {
		count += len(clients)
	}
	return count
}

// SendStatusUpdate pushes a processing status for one resource to its
// subscribers and to the global list clients.
func SendStatusUpdate(resource, resourceID, status string, progress float64, errorMsg string) {
	update := StatusUpdate{
		Resource:   resource,
		ResourceID: resourceID,
		Status:     status,
		Progress:   progress,
		Error:      errorMsg,
	}
	data, err := json.Marshal(update)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	H.Broadcast(resourceID, data)
	H.BroadcastGlobal(data)
}

// BroadcastListChanged signals list pages to refetch. Resource is one of
// document, summary, podcast, voice.
func BroadcastListChanged(resource string) {
	data, err := json.Marshal(map[string]string{"type": resource + "_list_changed"})
	if err != nil {
		return
	}
	H.BroadcastGlobal(data)
}

func (h *Hub) Unregister(resourceID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if clients, ok := h.Clients[resourceID]; ok {
		if client, ok := clients[conn]; ok {
			close(client.Send)
			delete(clients, conn)
		}
		if len(clients) == 0 {
			delete(h.Clients, resourceID)
		}
	}
}

func (h *Hub) UnregisterGlobal(conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if client, ok := h.GlobalClients[conn]; ok {
		close(client.Send)
		delete(h.GlobalClients, conn)
	}
}

func (h *Hub) readPump(resourceID string, conn *websocket.Conn) {
	defer h.Unregister(resourceID, conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) writePump(resourceID string, conn *websocket.Conn) {
	h.Mutex.RLock()
	client := h.Clients[resourceID][conn]
	h.Mutex.RUnlock()
	defer func() {
		conn.WriteMessage(websocket.CloseMessage, []byte{})
		conn.Close()
	}()
	for msg := range client.Send {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

func (h *Hub) readGlobalPump(conn *websocket.Conn) {
	defer h.UnregisterGlobal(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) writeGlobalPump(conn *websocket.Conn) {
	h.Mutex.RLock()
	client := h.GlobalClients[conn]
	h.Mutex.RUnlock()
	defer func() {
		conn.WriteMessage(websocket.CloseMessage, []byte{})
		conn.Close()
	}()
	for msg := range client.Send {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}
