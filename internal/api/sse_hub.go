package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"flareshield/ports"

	"github.com/gin-gonic/gin"
)

// KeepAliveInterval is how often an idle stream receives a ping
const KeepAliveInterval = 30 * time.Second

// SSEClient represents a connected SSE client
type SSEClient struct {
	SessionID string
	Channel   chan ports.StepEvent
}

// SSEHub fans step events out to the Server-Sent Events clients of each session
type SSEHub struct {
	clients    map[string]map[chan ports.StepEvent]bool
	clientsMu  sync.RWMutex
	register   chan SSEClient
	unregister chan SSEClient
	broadcast  chan ports.StepEvent
	done       chan struct{}
	closeOnce  sync.Once
}

// NewSSEHub creates a hub and starts its dispatch loop
func NewSSEHub() *SSEHub {
	hub := &SSEHub{
		clients:    make(map[string]map[chan ports.StepEvent]bool),
		register:   make(chan SSEClient, 10),
		unregister: make(chan SSEClient, 10),
		broadcast:  make(chan ports.StepEvent, 100),
		done:       make(chan struct{}),
	}

	go hub.run()
	return hub
}

func (h *SSEHub) run() {
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.clientsMu.Lock()
			if h.clients[client.SessionID] == nil {
				h.clients[client.SessionID] = make(map[chan ports.StepEvent]bool)
			}
			h.clients[client.SessionID][client.Channel] = true
			log.Printf("[SSE] Client registered for session %s (total clients: %d)",
				client.SessionID, len(h.clients[client.SessionID]))
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if clients, exists := h.clients[client.SessionID]; exists {
				delete(clients, client.Channel)
				log.Printf("[SSE] Client unregistered from session %s (remaining clients: %d)",
					client.SessionID, len(clients))
				if len(clients) == 0 {
					delete(h.clients, client.SessionID)
				}
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			for clientChan := range h.clients[event.SessionID] {
				select {
				case clientChan <- event:
				default:
					// slow client, drop
					log.Printf("[SSE] Client channel full for session %s, skipping event", event.SessionID)
				}
			}
			h.clientsMu.RUnlock()
		}
	}
}

// Publish implements ports.EventSink; it never blocks the runner
func (h *SSEHub) Publish(event ports.StepEvent) {
	select {
	case h.broadcast <- event:
	default:
		log.Printf("[SSE] Broadcast channel full, dropping event: %s", event.EventType)
	}
}

// Close stops the dispatch loop
func (h *SSEHub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// HandleSSE streams the events of the session named by the session_id query parameter
func (h *SSEHub) HandleSSE(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id parameter required"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Headers", "Cache-Control")

	clientChan := make(chan ports.StepEvent, 10)
	client := SSEClient{SessionID: sessionID, Channel: clientChan}

	select {
	case h.register <- client:
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "SSE hub registration failed"})
		return
	}
	defer h.leave(client)

	ctx := c.Request.Context()
	ping := time.NewTicker(KeepAliveInterval)
	defer ping.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case event := <-clientChan:
			eventJSON, err := json.Marshal(event)
			if err != nil {
				log.Printf("[SSE] Failed to marshal event: %v", err)
				return true
			}
			c.SSEvent(event.EventType, string(eventJSON))
			return event.EventType != ports.EventComplete

		case <-ping.C:
			c.SSEvent("ping", `{"status": "alive", "timestamp": "`+time.Now().Format(time.RFC3339)+`"}`)
			return true

		case <-ctx.Done():
			return false

		case <-h.done:
			return false
		}
	})
}

// leave hands client to the dispatch loop, giving up only once the hub is closed
func (h *SSEHub) leave(client SSEClient) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// StreamCounts maps each session with connected clients to its client count
func (h *SSEHub) StreamCounts() map[string]int {
	counts := make(map[string]int)
	for _, sessionID := range h.GetActiveSessions() {
		counts[sessionID] = h.GetClientCount(sessionID)
	}
	return counts
}

// GetActiveSessions returns sessions with active SSE clients
func (h *SSEHub) GetActiveSessions() []string {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	sessions := make([]string, 0, len(h.clients))
	for sessionID := range h.clients {
		sessions = append(sessions, sessionID)
	}
	return sessions
}

// GetClientCount returns the number of active clients for a session
func (h *SSEHub) GetClientCount(sessionID string) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients[sessionID])
}
