package handlers

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/chepyr/task-api/internal/metrics"
	"github.com/chepyr/task-api/internal/models"
	"github.com/gorilla/websocket"
)

const (
	EventTaskCreated = "task_created"
	EventTaskUpdated = "task_updated"
	EventTaskDeleted = "task_deleted"

	writeWait      = 5 * time.Second
	maxMessageSize = 512
)

// Event is pushed to every WebSocket client after a task mutation commits.
type Event struct {
	Event  string               `json:"event"`
	TaskID int64                `json:"task_id"`
	Task   *models.TaskResponse `json:"task,omitempty"`
}

type Hub struct {
	connections map[*websocket.Conn]bool
	mutex       sync.Mutex
	metrics     *metrics.Metrics
}

func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{connections: make(map[*websocket.Conn]bool), metrics: m}
}

func (h *Hub) Register(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.connections[conn] = true
	h.metrics.SetWSClients(len(h.connections))
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.drop(conn)
}

// drop must be called with the mutex held.
func (h *Hub) drop(conn *websocket.Conn) {
	if _, ok := h.connections[conn]; !ok {
		return
	}
	delete(h.connections, conn)
	conn.Close()
	h.metrics.SetWSClients(len(h.connections))
}

func (h *Hub) Len() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.connections)
}

// Broadcast sends evt to all clients; clients that fail a write are dropped.
func (h *Hub) Broadcast(evt Event) {
	if h == nil {
		return
	}
	message, err := json.Marshal(evt)
	if err != nil {
		log.Printf("[ws] marshal %s event: %v", evt.Event, err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn := range h.connections {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("[ws] send %s event: %v", evt.Event, err)
			h.drop(conn)
		}
	}
}

// CloseAll says goodbye to every client. Hijacked connections are not
// closed by http.Server.Shutdown, so the server calls this on exit.
func (h *Hub) CloseAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for conn := range h.connections {
		conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		h.drop(conn)
	}
}

// HandleWebSocket streams task events to the client until it disconnects.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !h.RateLimiter.Allow(clientIP(r)) {
		sendError(w, "Too many WebSocket connection attempts", http.StatusTooManyRequests)
		return
	}

	upgrader := websocket.Upgrader{CheckOrigin: h.checkOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}

	h.Hub.Register(conn)
	defer h.Hub.Unregister(conn)

	conn.SetReadLimit(maxMessageSize)
	for {
		// clients only listen; reading detects the disconnect
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] read: %v", err)
			}
			return
		}
	}
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.CORSOrigins) == 0 {
		return true
	}
	for _, allowed := range h.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
